// File: internal/book/model.go
package book

import (
	"educycle_backend/internal/common"

	"gorm.io/datatypes"
)

// Book is a donated textbook.
type Book struct {
	common.BaseModel
	Title          string                     `gorm:"type:varchar(255);not null" json:"title"`
	Slug           string                     `gorm:"type:varchar(300);index" json:"slug"`
	Subject        string                     `gorm:"type:varchar(100);not null;index" json:"subject"`
	ClassLevel     string                     `gorm:"type:varchar(50);not null;index" json:"class_level"`
	Board          string                     `gorm:"type:varchar(50);not null;index" json:"board"`
	Condition      string                     `gorm:"type:varchar(20);not null" json:"condition"`
	City           string                     `gorm:"type:varchar(100);not null;index" json:"city"`
	Area           string                     `gorm:"type:varchar(100);not null" json:"area"`
	Description    string                     `gorm:"type:text" json:"description"`
	ImageURLs      datatypes.JSONSlice[string] `gorm:"type:json" json:"image_urls"`
	DonorUID       string                     `gorm:"type:varchar(128);not null;index" json:"donor_uid"`
	PickupLocation string                     `gorm:"type:varchar(255)" json:"pickup_location,omitempty"`
	Available      bool                       `gorm:"not null;default:true;index" json:"available"`
}

// TableName specifies the table name for the Book model.
func (Book) TableName() string {
	return "books"
}

// --- DTOs ---

// DonateRequest is the JSON "payload" part of a donation upload.
type DonateRequest struct {
	Title          string `json:"title" binding:"required,min=2,max=255"`
	Subject        string `json:"subject" binding:"required,max=100"`
	ClassLevel     string `json:"class_level" binding:"required,max=50"`
	Board          string `json:"board" binding:"required,max=50"`
	Condition      string `json:"condition" binding:"required,book_condition"`
	City           string `json:"city" binding:"required,max=100"`
	Area           string `json:"area" binding:"required,max=100"`
	Description    string `json:"description,omitempty" binding:"omitempty,max=2000"`
	PickupLocation string `json:"pickup_location,omitempty" binding:"omitempty,max=255"`
}

// DonateResponse is returned after a successful donation.
type DonateResponse struct {
	BookID    string   `json:"book_id"`
	Slug      string   `json:"slug"`
	ImageURLs []string `json:"image_urls"`
}

// SearchQuery holds exact-match filters plus an optional free-text term.
type SearchQuery struct {
	Subject    string `form:"subject"`
	ClassLevel string `form:"class_level"`
	Board      string `form:"board"`
	Condition  string `form:"condition" binding:"omitempty,book_condition"`
	City       string `form:"city"`
	Area       string `form:"area"`
	Q          string `form:"q" binding:"omitempty,max=200"`
	common.PaginationQuery
}

// filters returns the non-empty exact-match filters keyed by column name.
func (q SearchQuery) filters() map[string]string {
	out := map[string]string{}
	for col, v := range map[string]string{
		"subject":     q.Subject,
		"class_level": q.ClassLevel,
		"board":       q.Board,
		"condition":   q.Condition,
		"city":        q.City,
		"area":        q.Area,
	} {
		if v != "" {
			out[col] = v
		}
	}
	return out
}
