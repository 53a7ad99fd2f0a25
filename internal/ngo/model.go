// File: internal/ngo/model.go
package ngo

import (
	"educycle_backend/internal/common"
)

// Bulk request statuses.
const (
	StatusOpen      = "open"
	StatusCompleted = "completed"
)

// BulkRequest is an NGO's standing demand for a number of books.
type BulkRequest struct {
	common.BaseModel
	NGOUID     string `gorm:"column:ngo_uid;type:varchar(128);not null;index" json:"ngo_uid"`
	ClassLevel string `gorm:"type:varchar(50);not null" json:"class_level"`
	Board      string `gorm:"type:varchar(50)" json:"board"`
	Subject    string `gorm:"type:varchar(100)" json:"subject"`
	Quantity   int    `gorm:"not null" json:"quantity"`
	Fulfilled  int    `gorm:"not null;default:0" json:"fulfilled"`
	City       string `gorm:"type:varchar(100)" json:"city"`
	Area       string `gorm:"type:varchar(100)" json:"area"`
	Status     string `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
}

func (BulkRequest) TableName() string {
	return "bulk_requests"
}

// Remaining is how many books are still needed.
func (b *BulkRequest) Remaining() int {
	if b.Fulfilled >= b.Quantity {
		return 0
	}
	return b.Quantity - b.Fulfilled
}

// CreateBulkRequest is the body of POST /ngo/bulk-request.
type CreateBulkRequest struct {
	ClassLevel string `json:"class_level" binding:"required,max=50"`
	Board      string `json:"board,omitempty" binding:"omitempty,max=50"`
	Subject    string `json:"subject,omitempty" binding:"omitempty,max=100"`
	Quantity   int    `json:"quantity" binding:"required,gte=1,lte=10000"`
	City       string `json:"city,omitempty" binding:"omitempty,max=100"`
	Area       string `json:"area,omitempty" binding:"omitempty,max=100"`
}

// FulfillRequest records books handed over against a bulk request.
type FulfillRequest struct {
	Count int `json:"count" binding:"required,gte=1"`
}
