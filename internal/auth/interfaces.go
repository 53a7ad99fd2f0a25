// File: internal/auth/interfaces.go
package auth

import (
	"context"

	"educycle_backend/internal/shared"
	"educycle_backend/internal/user"
)

// AccountLookup finds local profiles by uid or email.
type AccountLookup interface {
	GetUserByUID(ctx context.Context, uid string) (*shared.User, error)
	GetUserByEmail(ctx context.Context, email string) (*shared.User, error)
}

// Accounts is the part of the user module the auth flows drive.
// user.ServiceImplementation implements it.
type Accounts interface {
	AccountLookup
	Bootstrap(ctx context.Context, uid, email string, req user.BootstrapRequest) (*shared.User, bool, error)
	CreateWithPassword(ctx context.Context, uid, email, passwordHash string, req user.BootstrapRequest) (*shared.User, error)
	PasswordHash(ctx context.Context, email string) (uid string, hash string, err error)
	UpdateProfile(ctx context.Context, uid string, req user.UpdateProfileRequest) (*shared.User, error)
}
