// File: internal/distribution/handler.go
package distribution

import (
	"encoding/json"
	"strconv"

	"educycle_backend/internal/common"
	"educycle_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
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

// RegisterRoutes registers the feed. Reading is public; writing needs a signed-in user.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := router.Group("/distribution")
	{
		g.GET("", h.list)
		g.GET("/", h.list)
		g.POST("", authMW, middleware.RoleAuthMiddleware(common.RoleNGO), h.create)
		g.POST("/", authMW, middleware.RoleAuthMiddleware(common.RoleNGO), h.create)
		g.POST("/:id/like", authMW, h.like)
		g.GET("/:id/comments", h.comments)
		g.POST("/:id/comment", authMW, h.comment)
		g.DELETE("/:id", authMW, h.delete)
	}
}

func (h *Handler) list(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultListLimit)))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("limit must be a number."))
		return
	}
	events, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Distribution events retrieved successfully.", events)
}

func (h *Handler) create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Expected multipart form with payload and images."))
		return
	}
	payloads := form.Value["payload"]
	if len(payloads) == 0 {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing payload field."))
		return
	}
	var req CreateRequest
	if err := json.Unmarshal([]byte(payloads[0]), &req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid payload JSON"))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	event, err := h.service.Create(c.Request.Context(), common.GetUserUIDFromContext(c), req, form.File["images"])
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Distribution event posted.", event)
}

func (h *Handler) like(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	res, err := h.service.ToggleLike(c.Request.Context(), id, common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Like updated.", res)
}

func (h *Handler) comments(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	comments, err := h.service.Comments(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Comments retrieved successfully.", comments)
}

func (h *Handler) comment(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), id, common.GetUserUIDFromContext(c), req.Text)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Comment added.", comment)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, common.GetUserUIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Event deleted.", gin.H{"status": "success"})
}

func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Event not found"))
		return uuid.Nil, false
	}
	return id, true
}
