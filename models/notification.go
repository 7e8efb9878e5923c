package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationFileShared      NotificationType = "file_shared"
	NotificationStorageLimit    NotificationType = "storage_limit"
	NotificationActivitySummary NotificationType = "activity_summary"
	NotificationSecurityAlert   NotificationType = "security_alert"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationFileShared, NotificationStorageLimit, NotificationActivitySummary, NotificationSecurityAlert:
		return true
	default:
		return false
	}
}

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Type      NotificationType   `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Data      map[string]any     `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	ExpiresAt *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}
