// File: internal/middleware/auth.go
package middleware

import (
	"errors"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the bearer ID token with the identity provider and loads the caller's role.
// Users who signed in but never bootstrapped pass through without a role.
func AuthMiddleware(provider shared.IdentityProvider, users shared.UserService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		token, err := provider.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, shared.ErrIdentityDisabled) {
				common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("Authentication is not configured on this server."))
				return
			}
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}

		c.Set(common.UserUIDKey, token.UID)
		c.Set(common.UserEmailKey, token.Email)

		profile, err := users.GetUserByUID(c.Request.Context(), token.UID)
		switch {
		case err == nil:
			c.Set(common.UserRoleKey, profile.Role)
		case errors.Is(err, common.ErrNotFound):
			// roleless: signed in, not yet bootstrapped
		default:
			logger.Error("Failed to load user profile for authenticated request", zap.Error(err), zap.String("uid", token.UID))
			common.RespondWithError(c, err)
			return
		}

		logger.Debug("User authenticated successfully",
			zap.String("uid", token.UID),
			zap.String("role", c.GetString(common.UserRoleKey)),
		)
		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware to check if the authenticated user has one of the required roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := common.GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User profile not found. Complete sign-up first."))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}
