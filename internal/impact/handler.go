// File: internal/impact/handler.go
package impact

import (
	"educycle_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := router.Group("/impact", authMW)
	{
		g.GET("", h.get)
		g.GET("/", h.get)
	}
}

func (h *Handler) get(c *gin.Context) {
	stats, err := h.service.ForUser(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Impact retrieved successfully.", stats)
}
