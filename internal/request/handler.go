package request

import (
	"context"

	"educycle_backend/internal/common"
	"educycle_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the request lifecycle over HTTP.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	requests := router.Group("/requests", authMW)
	{
		requireRole := middleware.RoleAuthMiddleware(common.RoleStudent, common.RoleNGO)
		requests.GET("", h.list)
		requests.GET("/", h.list)
		requests.POST("", requireRole, h.create)
		requests.POST("/", requireRole, h.create)
		requests.GET("/:id", h.get)
		requests.POST("/:id/approve", h.approve)
		requests.POST("/:id/reject", h.reject)
		requests.PATCH("/:id/status", h.updateStatus)
		requests.POST("/:id/complete", h.complete)
	}
}

func requestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Request not found"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) list(c *gin.Context) {
	reqs, err := h.service.List(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Requests retrieved successfully.", reqs)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	br, err := h.service.Create(c.Request.Context(), common.GetUserUIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Request sent to the donor.", CreateResponse{RequestID: br.ID.String(), Status: br.Status})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	br, err := h.service.Get(c.Request.Context(), id, common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Request retrieved successfully.", br)
}

func (h *Handler) approve(c *gin.Context) {
	h.transition(c, h.service.Approve, "Request approved.")
}

func (h *Handler) reject(c *gin.Context) {
	h.transition(c, h.service.Reject, "Request rejected.")
}

func (h *Handler) complete(c *gin.Context) {
	h.transition(c, h.service.Complete, "Book marked as collected.")
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	res, err := h.service.UpdateStatus(c.Request.Context(), id, common.GetUserUIDFromContext(c), body.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Request status updated.", res)
}

type transitionFunc func(ctx context.Context, id uuid.UUID, uid string) (*TransitionResponse, error)

func (h *Handler) transition(c *gin.Context, fn transitionFunc, message string) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	res, err := fn(c.Request.Context(), id, common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, message, res)
}
