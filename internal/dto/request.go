package dto

type CreateNotification struct {
	UserID     string  `json:"userId"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	SourceID   *string `json:"sourceId,omitempty"`
	SourceType *string `json:"sourceType,omitempty"`
}

type UpdateNotification struct {
	IsRead *bool `json:"isRead"`
}

type MarkAllRead struct {
	UserID string `json:"userId"`
	Type   string `json:"type,omitempty"`
}
