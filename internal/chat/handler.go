package chat

import (
	"educycle_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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
	chats := router.Group("/chats", authMW)
	{
		chats.GET("/:id", h.getChat)
		chats.GET("/:id/messages", h.listMessages)
		chats.POST("/:id/message", h.sendMessage)
	}
}

func chatID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Chat not found"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) getChat(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	chat, err := h.service.Get(c.Request.Context(), id, common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Chat retrieved successfully.", chat)
}

func (h *Handler) listMessages(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	msgs, err := h.service.Messages(c.Request.Context(), id, common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Messages retrieved successfully.", msgs)
}

func (h *Handler) sendMessage(c *gin.Context) {
	id, ok := chatID(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	msg, err := h.service.Send(c.Request.Context(), id, common.GetUserUIDFromContext(c), req.Message)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Message sent.", gin.H{"sent": true, "message": msg})
}
