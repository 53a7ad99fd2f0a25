// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// UserUIDKey is the context key for the identity-provider UID of the caller
	UserUIDKey = "userUID"
	// UserEmailKey is the context key for storing the authenticated user's email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for the caller's role; unset for users who never bootstrapped
	UserRoleKey = "userRole"
	// LoggerKey holds a request-scoped *zap.Logger
	LoggerKey = "logger"
)
