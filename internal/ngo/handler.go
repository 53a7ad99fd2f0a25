// File: internal/ngo/handler.go
package ngo

import (
	"educycle_backend/internal/common"
	"educycle_backend/internal/middleware"

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
	ngoOnly := middleware.RoleAuthMiddleware(common.RoleNGO)
	g := router.Group("/ngo")
	{
		g.GET("/bulk-requests/open", h.listOpen)
		g.POST("/bulk-request", authMW, ngoOnly, h.create)
		g.GET("/bulk-request", authMW, ngoOnly, h.listMine)
		g.POST("/bulk-request/:id/fulfill", authMW, ngoOnly, h.fulfill)
	}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	br, err := h.service.Create(c.Request.Context(), common.GetUserUIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Bulk request created.", br)
}

func (h *Handler) listMine(c *gin.Context) {
	reqs, err := h.service.ListMine(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if reqs == nil {
		reqs = []BulkRequest{}
	}
	common.RespondOK(c, "Bulk requests retrieved successfully.", reqs)
}

func (h *Handler) listOpen(c *gin.Context) {
	reqs, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if reqs == nil {
		reqs = []BulkRequest{}
	}
	common.RespondOK(c, "Open bulk requests retrieved successfully.", reqs)
}

func (h *Handler) fulfill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Bulk request not found"))
		return
	}
	var req FulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	br, err := h.service.Fulfill(c.Request.Context(), id, common.GetUserUIDFromContext(c), req.Count)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Bulk request updated.", br)
}
