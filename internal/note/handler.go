// File: internal/note/handler.go
package note

import (
	"encoding/json"

	"educycle_backend/internal/common"

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

// RegisterRoutes registers note routes. Listing and download counting are public.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	notes := router.Group("/notes")
	{
		notes.GET("", h.list)
		notes.GET("/", h.list)
		notes.POST("", authMW, h.upload)
		notes.POST("/", authMW, h.upload)
		notes.GET("/mine", authMW, h.listMine)
		notes.POST("/:id/download", h.download)
		notes.DELETE("/:id", authMW, h.delete)
	}
}

func (h *Handler) list(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	notes, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if notes == nil {
		notes = []Note{}
	}
	common.RespondPaginated(c, "Notes retrieved successfully.", notes, pagination)
}

func (h *Handler) listMine(c *gin.Context) {
	notes, err := h.service.ListMine(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if notes == nil {
		notes = []Note{}
	}
	common.RespondOK(c, "Notes retrieved successfully.", notes)
}

func (h *Handler) upload(c *gin.Context) {
	raw := c.PostForm("payload")
	if raw == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing payload field."))
		return
	}
	var req UploadRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid payload JSON"))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing file field."))
		return
	}

	n, err := h.service.Upload(c.Request.Context(), common.GetUserUIDFromContext(c), req, file)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Note uploaded successfully.", n)
}

func (h *Handler) download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Note not found"))
		return
	}
	res, err := h.service.RegisterDownload(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Download registered.", res)
}

func (h *Handler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Note not found"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, common.GetUserUIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Note deleted successfully.", gin.H{"deleted": true})
}
