// File: internal/feedback/model.go
package feedback

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is one participant's rating of the other after a completed request.
type Feedback struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_author" json:"request_id"`
	FromUID   string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_feedback_author" json:"from_uid"`
	ToUID     string    `gorm:"type:varchar(128);not null;index" json:"to_uid"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// SubmitRequest is the body of POST /feedback/. ToUID may be omitted; it is then
// the other participant of the request.
type SubmitRequest struct {
	RequestID string `json:"request_id" binding:"required,uuid"`
	ToUID     string `json:"to_uid,omitempty"`
	Rating    int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment   string `json:"comment,omitempty" binding:"omitempty,max=1000"`
}

// SubmitResponse mirrors {"status":"submitted"} plus the recipient's new reputation.
type SubmitResponse struct {
	Status     string  `json:"status"`
	FeedbackID string  `json:"feedback_id"`
	Reputation float64 `json:"reputation"`
}
