// File: internal/book/handler.go
package book

import (
	"encoding/json"

	"educycle_backend/internal/common"
	"educycle_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for books.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new book handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers book routes. Search and detail are public.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	books := router.Group("/books")
	{
		books.GET("/search", h.searchBooks)
		books.GET("/mine", authMW, h.listMine)
		books.POST("/donate", authMW, middleware.RoleAuthMiddleware(common.RoleStudent, common.RoleNGO), h.donate)
		books.GET("/:id", h.getBook)
	}
}

func (h *Handler) donate(c *gin.Context) {
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

	var req DonateRequest
	if err := json.Unmarshal([]byte(payloads[0]), &req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid payload JSON"))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	b, err := h.service.Donate(c.Request.Context(), common.GetUserUIDFromContext(c), req, form.File["images"])
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Book donated successfully.", DonateResponse{
		BookID:    b.ID.String(),
		Slug:      b.Slug,
		ImageURLs: b.ImageURLs,
	})
}

func (h *Handler) getBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Book not found"))
		return
	}
	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Book retrieved successfully.", b)
}

func (h *Handler) searchBooks(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	books, pagination, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if books == nil {
		books = []Book{}
	}
	common.RespondPaginated(c, "Books retrieved successfully.", books, pagination)
}

func (h *Handler) listMine(c *gin.Context) {
	books, err := h.service.ListMine(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if books == nil {
		books = []Book{}
	}
	common.RespondOK(c, "Books retrieved successfully.", books)
}
