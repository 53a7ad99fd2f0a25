// File: internal/common/context_helpers.go
package common

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetTokenFromContext retrieves the bearer token from the Authorization header.
// Returns an empty string if not found.
func GetTokenFromContext(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserUIDFromContext retrieves the authenticated UID from the Gin context.
func GetUserUIDFromContext(c *gin.Context) string {
	return c.GetString(UserUIDKey)
}

// GetUserEmailFromContext retrieves the authenticated email from the Gin context.
func GetUserEmailFromContext(c *gin.Context) string {
	return c.GetString(UserEmailKey)
}

// GetUserRoleFromContext retrieves the user role from the Gin context.
func GetUserRoleFromContext(c *gin.Context) string {
	return c.GetString(UserRoleKey)
}
