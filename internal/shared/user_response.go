// File: internal/shared/user_response.go
package shared

import (
	"time"
)

// UserResponse is the profile payload returned by /auth/me and bootstrap.
type UserResponse struct {
	UID              string    `json:"uid"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	DisplayName      string    `json:"display_name"`
	OrganizationName string    `json:"organization_name,omitempty"`
	City             string    `json:"city"`
	Area             string    `json:"area"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Verified         bool      `json:"verified"`
	EduCredits       int       `json:"edu_credits"`
	Reputation       float64   `json:"reputation"`
	ProfileCompleted bool      `json:"profile_completed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToUserResponse converts a shared.User to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		UID:              u.UID,
		Email:            u.Email,
		Role:             u.Role,
		DisplayName:      u.DisplayName,
		OrganizationName: u.OrganizationName,
		City:             u.City,
		Area:             u.Area,
		Latitude:         u.Latitude,
		Longitude:        u.Longitude,
		Verified:         u.Verified,
		EduCredits:       u.EduCredits,
		Reputation:       u.Reputation,
		ProfileCompleted: u.ProfileCompleted,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
