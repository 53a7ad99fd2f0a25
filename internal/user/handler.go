// File: internal/user/handler.go
package user

import (
	"educycle_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for user operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	userGroup := router.Group("/users", authMW)
	{
		userGroup.GET("/:uid", h.getPublicProfile)
	}
}

func (h *Handler) getPublicProfile(c *gin.Context) {
	usr, err := h.service.GetUserByUID(c.Request.Context(), c.Param("uid"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User profile retrieved successfully.", ToPublicProfile(usr))
}
