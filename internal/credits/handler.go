package credits

import (
	"strconv"

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
	g := router.Group("/credits", authMW)
	{
		g.GET("/me", h.getMine)
		g.GET("/leaderboard", h.getLeaderboard)
	}
}

func (h *Handler) getMine(c *gin.Context) {
	balance, err := h.service.GetBalance(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Credits retrieved successfully.", balance)
}

func (h *Handler) getLeaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("limit must be an integer."))
			return
		}
		limit = n
	}
	entries, err := h.service.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Leaderboard retrieved successfully.", entries)
}
