package notification

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
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for notification operations.
// All routes in this group should be authenticated.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.getNotifications)
	router.GET("/", h.getNotifications)
	router.GET("/unread-count", h.getUnreadCount)
	router.POST("/:notification_id/mark-read", h.markNotificationAsRead)
	router.POST("/mark-all-read", h.markAllNotificationsAsRead)
}

func (h *Handler) getNotifications(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	notifications, pagination, err := h.service.GetNotificationsForUser(c.Request.Context(), common.GetUserUIDFromContext(c), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", notifications, pagination)
}

func (h *Handler) getUnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Unread count retrieved successfully.", gin.H{"unread": count})
}

func (h *Handler) markNotificationAsRead(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}

	if err := h.service.MarkNotificationAsRead(c.Request.Context(), notificationID, common.GetUserUIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read successfully.", nil)
}

func (h *Handler) markAllNotificationsAsRead(c *gin.Context) {
	count, err := h.service.MarkAllUserNotificationsAsRead(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read successfully.", gin.H{"updated": count})
}
