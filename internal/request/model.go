package request

import (
	"time"

	"educycle_backend/internal/common"

	"github.com/google/uuid"
)

// BookRequest is a student's request for a donated book.
type BookRequest struct {
	common.BaseModel
	BookID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"book_id"`
	BookTitle      string     `gorm:"type:varchar(255)" json:"book_title"`
	RequesterUID   string     `gorm:"type:varchar(128);not null;index" json:"requester_uid"`
	DonorUID       string     `gorm:"type:varchar(128);not null;index" json:"donor_uid"`
	Status         Status     `gorm:"type:varchar(20);not null;index" json:"status"`
	PickupLocation string     `gorm:"type:varchar(255)" json:"pickup_location"`
	Reason         string     `gorm:"type:text" json:"reason"`
	Quantity       int        `gorm:"not null;default:1" json:"quantity"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for the BookRequest model.
func (BookRequest) TableName() string {
	return "book_requests"
}

// --- DTOs ---

// CreateRequest is the body of POST /requests/.
type CreateRequest struct {
	BookID         string `json:"book_id" binding:"required,uuid"`
	DonorUID       string `json:"donor_uid" binding:"omitempty,max=128"`
	Reason         string `json:"reason" binding:"omitempty,max=1000"`
	PickupLocation string `json:"pickup_location" binding:"omitempty,max=255"`
	Quantity       int    `json:"quantity" binding:"omitempty,gte=1,lte=100"`
}

// CreateResponse is returned after a request is filed.
type CreateResponse struct {
	RequestID string `json:"request_id"`
	Status    Status `json:"status"`
}

// UpdateStatusRequest is the body of PATCH /requests/:id/status.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending approved rejected completed"`
}

// TransitionResponse reports the state after a transition. FeedbackPath is set on completion.
type TransitionResponse struct {
	RequestID    string `json:"request_id"`
	Status       Status `json:"status"`
	FeedbackPath string `json:"feedback_path,omitempty"`
}

// Counts summarizes a user's requests for impact reporting.
type Counts struct {
	Sent             int64 `json:"sent"`
	ReceivedTotal    int64 `json:"received_total"`
	ReceivedPending  int64 `json:"received_pending"`
	ReceivedComplete int64 `json:"received_completed"`
	SentCompleted    int64 `json:"sent_completed"`
}
