// File: internal/distribution/model.go
package distribution

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event is an NGO's post about books it handed out.
type Event struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	NGOUID        string                      `gorm:"column:ngo_uid;type:varchar(128);not null;index" json:"ngo_uid"`
	NGOName       string                      `gorm:"column:ngo_name;type:varchar(200)" json:"ngo_name"`
	Title         string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description   string                      `gorm:"type:text;not null" json:"description"`
	ImageURLs     datatypes.JSONSlice[string] `gorm:"type:json" json:"image_urls"`
	LikesCount    int                         `gorm:"not null;default:0" json:"likes_count"`
	LikedBy       datatypes.JSONSlice[string] `gorm:"type:json" json:"liked_by"`
	CommentsCount int                         `gorm:"not null;default:0" json:"comments_count"`
	Timestamp     time.Time                   `gorm:"not null;index" json:"timestamp"`
}

func (Event) TableName() string {
	return "distribution_events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return nil
}

// Comment is a reply on an event.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	UserUID   string    `gorm:"type:varchar(128);not null" json:"user_uid"`
	UserName  string    `gorm:"type:varchar(200)" json:"user_name"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (Comment) TableName() string {
	return "distribution_comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	return nil
}

// CreateRequest is the JSON "payload" part of a new post.
type CreateRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required,max=5000"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}
