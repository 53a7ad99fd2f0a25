// File: internal/location/handler.go
package location

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

// RegisterRoutes registers the public pickup-point search.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/location/pickup-points", h.pickupPoints)
}

func (h *Handler) pickupPoints(c *gin.Context) {
	var q PickupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	res, err := h.service.FindPickupPoints(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Pickup points retrieved successfully.", res)
}
