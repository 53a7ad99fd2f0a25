// File: internal/feedback/handler.go
package feedback

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
	g := router.Group("/feedback", authMW)
	{
		g.POST("", h.submit)
		g.POST("/", h.submit)
		g.GET("/received", h.received)
	}
}

func (h *Handler) submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	res, err := h.service.Submit(c.Request.Context(), common.GetUserUIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Feedback submitted.", res)
}

func (h *Handler) received(c *gin.Context) {
	out, err := h.service.ListReceived(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Feedback retrieved successfully.", out)
}
