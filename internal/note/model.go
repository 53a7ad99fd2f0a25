// File: internal/note/model.go
package note

import (
	"educycle_backend/internal/common"
)

// Note is a shared study-notes file.
type Note struct {
	common.BaseModel
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Subject     string `gorm:"type:varchar(100);not null;index" json:"subject"`
	ClassLevel  string `gorm:"type:varchar(50);not null;index" json:"class_level"`
	Board       string `gorm:"type:varchar(50);index" json:"board"`
	Description string `gorm:"type:text" json:"description"`
	FileURL     string `gorm:"type:varchar(500);not null" json:"file_url"`
	OwnerUID    string `gorm:"type:varchar(128);not null;index" json:"owner_uid"`
	Downloads   int    `gorm:"not null;default:0" json:"downloads"`
}

func (Note) TableName() string {
	return "notes"
}

// UploadRequest is the JSON "payload" part of a note upload.
type UploadRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=255"`
	Subject     string `json:"subject" binding:"required,max=100"`
	ClassLevel  string `json:"class_level" binding:"required,max=50"`
	Board       string `json:"board,omitempty" binding:"omitempty,max=50"`
	Description string `json:"description,omitempty" binding:"omitempty,max=2000"`
}

// ListQuery filters the public notes list.
type ListQuery struct {
	Subject    string `form:"subject"`
	ClassLevel string `form:"class_level"`
	Board      string `form:"board"`
	Q          string `form:"q" binding:"omitempty,max=200"`
	common.PaginationQuery
}

// DownloadResponse carries the file location and the updated counter.
type DownloadResponse struct {
	FileURL   string `json:"file_url"`
	Downloads int    `json:"downloads"`
}
