package dto

import (
	"time"

	"github.com/google/uuid"
)

type MQChatMessageSent struct {
	RoomID       string      `json:"room_id"`
	SenderID     uuid.UUID   `json:"sender_id"`
	SenderName   string      `json:"sender_name"`
	RecipientIDs []uuid.UUID `json:"recipient_ids"`
	Preview      string      `json:"preview"`
	SentAt       time.Time   `json:"sent_at"`
}

type MQQuestUpdate struct {
	QuestID     string    `json:"quest_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	QuestName   string    `json:"quest_name"`
	Status      string    `json:"status"`
}

type MQConnectionRequest struct {
	RequestID     string    `json:"request_id"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	RequesterName string    `json:"requester_name"`
}

type MQSystemBroadcast struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	SourceID   *string `json:"source_id,omitempty"`
	SourceType *string `json:"source_type,omitempty"`
	SendMail   bool    `json:"send_mail"`
}

type MQSystemMail struct {
	Email   string `json:"email"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type MQUserCreated struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}
