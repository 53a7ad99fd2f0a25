// File: internal/auth/handler.go
package auth

import (
	"errors"
	"io"
	"net/http"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"
	"educycle_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/bootstrap", authMW, h.bootstrap)
		authGroup.POST("/otp/send", h.sendOTP)
		authGroup.POST("/otp/register", h.register)
		authGroup.POST("/otp/login", h.loginWithOTP)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", authMW, h.me)
		authGroup.PUT("/me", authMW, h.updateMe)
	}
}

func (h *Handler) bootstrap(c *gin.Context) {
	var req user.BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	u, created, err := h.service.Bootstrap(c.Request.Context(), common.GetUserUIDFromContext(c), common.GetUserEmailFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	res := BootstrapResponse{Created: created, User: shared.ToUserResponse(u)}
	if created {
		common.RespondCreated(c, "Account created.", res)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "Account already exists.", res)
}

func (h *Handler) sendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	if err := h.service.SendOTP(c.Request.Context(), req.Email); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "OTP sent successfully.", gin.H{"status": "sent"})
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	token, err := h.service.RegisterWithOTP(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Registration successful.", token)
}

func (h *Handler) loginWithOTP(c *gin.Context) {
	var req OTPLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	token, err := h.service.LoginWithOTP(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", token)
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Login: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	token, err := h.service.LoginWithPassword(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", token)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.service.Me(c.Request.Context(), common.GetUserUIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully.", shared.ToUserResponse(u))
}

func (h *Handler) updateMe(c *gin.Context) {
	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	u, err := h.service.UpdateMe(c.Request.Context(), common.GetUserUIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", shared.ToUserResponse(u))
}
