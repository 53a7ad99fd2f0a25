package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	BookRequested       NotificationType = "book_requested"
	RequestApproved     NotificationType = "request_approved"
	RequestRejected     NotificationType = "request_rejected"
	RequestCompleted    NotificationType = "request_completed"
	FeedbackReceived    NotificationType = "feedback_received"
	DistributionComment NotificationType = "distribution_comment"
)

// Notification represents a user notification.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserUID   string           `gorm:"type:varchar(128);not null;index:idx_notification_user_status" json:"user_uid"`
	Type      NotificationType `gorm:"type:varchar(100);not null" json:"type"`
	Title     string           `gorm:"type:varchar(200);not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	RelatedID *uuid.UUID       `gorm:"type:uuid" json:"related_id,omitempty"`
	IsRead    bool             `gorm:"not null;default:false;index:idx_notification_user_status" json:"is_read"`
	CreatedAt time.Time        `gorm:"not null;index:idx_notification_user_status" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
