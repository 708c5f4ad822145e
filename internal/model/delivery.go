package model

import "github.com/google/uuid"

// NotificationDelivery is the payload pushed to a recipient's live connections.
type NotificationDelivery struct {
	Notification Notification `json:"notification"`
	RecipientID  uuid.UUID    `json:"-"`
}
