package shared

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

// User is the profile view other modules get of an account.
type User struct {
	UID              string
	Email            string
	Role             string
	DisplayName      string
	OrganizationName string
	City             string
	Area             string
	Latitude         *float64
	Longitude        *float64
	Verified         bool
	EduCredits       int
	Reputation       float64
	ProfileCompleted bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicName is what other users see: organization, then display name, then email.
func (u *User) PublicName() string {
	switch {
	case u.OrganizationName != "":
		return u.OrganizationName
	case u.DisplayName != "":
		return u.DisplayName
	default:
		return u.Email
	}
}

// UserService is the read side of the user module used by middleware and other modules.
type UserService interface {
	GetUserByUID(ctx context.Context, uid string) (*User, error)
}

var (
	// ErrIdentityNotFound is returned by an IdentityProvider when no account matches.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrIdentityDisabled is returned when no identity backend is configured.
	ErrIdentityDisabled = errors.New("identity provider is not configured")
	// ErrIdentityExists is returned when creating an account whose email is taken.
	ErrIdentityExists = errors.New("identity already exists")
)

// IdentityToken is a verified ID token.
type IdentityToken struct {
	UID   string
	Email string
}

// IdentityProvider wraps the external identity service that issues and verifies tokens.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*IdentityToken, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (string, error)
}

// Notifier delivers in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, userUID, notificationType, title, message string, relatedID *uuid.UUID) error
}

// Credit award reasons. A (user, reason, ref) triple is awarded at most once.
const (
	CreditReasonBookDonated      = "book_donated"
	CreditReasonFeedbackGiven    = "feedback_given"
	CreditReasonProfileCompleted = "profile_completed"
)

// CreditAwarder grants EduCredits.
type CreditAwarder interface {
	Award(ctx context.Context, userUID, reason, refID string) (bool, error)
}

// GeoPoint is a resolved coordinate.
type GeoPoint struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// Address is a reverse-geocoded location.
type Address struct {
	City        string `json:"city,omitempty"`
	Area        string `json:"area,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Geocoder resolves free-text places to coordinates and back. A nil point with a nil error means no match.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*GeoPoint, error)
	Reverse(ctx context.Context, lat, lon float64) (*Address, error)
}

// FileStore persists uploaded files and returns their public URLs.
type FileStore interface {
	Save(ctx context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}
