package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeMessage    = "message"
	TypeQuest      = "quest"
	TypeConnection = "connection"
	TypeSystem     = "system"
)

func IsValidType(t string) bool {
	switch t {
	case TypeMessage, TypeQuest, TypeConnection, TypeSystem:
		return true
	}
	return false
}

type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	SourceID    *string   `json:"source_id,omitempty"`
	SourceType  *string   `json:"source_type,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
