// File: internal/auth/model.go
package auth

import (
	"time"

	"educycle_backend/internal/shared"
)

// OTPCode is the pending one-time code for an email address.
type OTPCode struct {
	Email     string    `gorm:"type:varchar(255);primaryKey"`
	Code      string    `gorm:"type:varchar(12);not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Attempts  int       `gorm:"not null;default:0"`
	CreatedAt time.Time
}

func (OTPCode) TableName() string {
	return "otp_codes"
}

// SendOTPRequest asks for a verification code by email.
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RegisterMetadata carries the profile fields collected at sign-up.
type RegisterMetadata struct {
	FullName         string `json:"full_name,omitempty" binding:"omitempty,max=150"`
	OrganizationName string `json:"organization_name,omitempty" binding:"omitempty,max=200"`
	City             string `json:"city,omitempty" binding:"omitempty,max=100"`
	Area             string `json:"area,omitempty" binding:"omitempty,max=100"`
}

// RegisterRequest creates an email/password account after OTP verification.
type RegisterRequest struct {
	Email    string           `json:"email" binding:"required,email"`
	OTP      string           `json:"otp" binding:"required,len=6,numeric"`
	Password string           `json:"password" binding:"required,min=8,max=72"`
	Role     string           `json:"role" binding:"omitempty,edu_role"`
	Metadata RegisterMetadata `json:"metadata"`
}

// OTPLoginRequest signs in with a one-time code.
type OTPLoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// LoginRequest defines the structure for password login requests.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a custom token the client exchanges with the identity provider.
type TokenResponse struct {
	CustomToken string `json:"custom_token"`
	UID         string `json:"uid"`
}

// BootstrapResponse reports the caller's profile and whether it was just created.
type BootstrapResponse struct {
	Created bool                `json:"created"`
	User    shared.UserResponse `json:"user"`
}
