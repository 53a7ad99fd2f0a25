// File: internal/user/model.go
package user

import (
	"strings"
	"time"
)

// User represents an EduCycle account. UID is the identity provider's user id.
type User struct {
	UID              string   `gorm:"type:varchar(128);primaryKey"`
	Email            string   `gorm:"type:varchar(255);index"`
	PasswordHash     *string  `gorm:"type:varchar(255)"`
	Role             string   `gorm:"type:varchar(20);not null;index"`
	DisplayName      string   `gorm:"type:varchar(150)"`
	OrganizationName string   `gorm:"type:varchar(200)"`
	City             string   `gorm:"type:varchar(100);index"`
	Area             string   `gorm:"type:varchar(100)"`
	Latitude         *float64 `gorm:"type:double precision"`
	Longitude        *float64 `gorm:"type:double precision"`
	Verified         bool     `gorm:"not null;default:false"`
	EduCredits       int      `gorm:"not null;default:0"`
	Reputation       float64  `gorm:"not null;default:0"`
	ProfileCompleted bool     `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// hasCompleteProfile reports whether the fields shown on public pages are filled.
func (u *User) hasCompleteProfile() bool {
	name := u.DisplayName
	if u.Role == "ngo" && u.OrganizationName != "" {
		name = u.OrganizationName
	}
	return strings.TrimSpace(name) != "" && strings.TrimSpace(u.City) != "" && strings.TrimSpace(u.Area) != ""
}

// --- DTOs ---

// BootstrapRequest provisions the caller's account after first sign-in.
type BootstrapRequest struct {
	Role             string `json:"role" binding:"omitempty,edu_role"`
	DisplayName      string `json:"display_name,omitempty" binding:"omitempty,max=150"`
	OrganizationName string `json:"organization_name,omitempty" binding:"omitempty,max=200"`
	City             string `json:"city,omitempty" binding:"omitempty,max=100"`
	Area             string `json:"area,omitempty" binding:"omitempty,max=100"`
}

// UpdateProfileRequest changes editable profile fields. Role is not editable.
type UpdateProfileRequest struct {
	DisplayName      *string `json:"display_name,omitempty" binding:"omitempty,max=150"`
	OrganizationName *string `json:"organization_name,omitempty" binding:"omitempty,max=200"`
	City             *string `json:"city,omitempty" binding:"omitempty,max=100"`
	Area             *string `json:"area,omitempty" binding:"omitempty,max=100"`
}

// PublicProfile is what any signed-in user can see about another user.
type PublicProfile struct {
	UID        string  `json:"uid"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	City       string  `json:"city"`
	Area       string  `json:"area"`
	Verified   bool    `json:"verified"`
	Reputation float64 `json:"reputation"`
}
