package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chat is the conversation opened when a request is approved. Its ID equals the request ID.
type Chat struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID    uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"request_id"`
	Participants datatypes.JSONSlice[string] `gorm:"type:json" json:"participants"`
	Active       bool                        `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time                   `json:"created_at"`
}

func (Chat) TableName() string {
	return "chats"
}

// HasParticipant reports whether uid belongs to the chat.
func (c *Chat) HasParticipant(uid string) bool {
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

// Message is a single chat line.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_messages_chat_ts" json:"chat_id"`
	SenderUID string    `gorm:"type:varchar(128);not null" json:"sender_uid"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"not null;index:idx_chat_messages_chat_ts" json:"timestamp"`
}

func (Message) TableName() string {
	return "chat_messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}

// SendMessageRequest is the body of POST /chats/:id/message.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}
