// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"educycle_backend/internal/auth"
	"educycle_backend/internal/book"
	"educycle_backend/internal/chat"
	"educycle_backend/internal/config"
	"educycle_backend/internal/credits"
	"educycle_backend/internal/distribution"
	"educycle_backend/internal/feedback"
	"educycle_backend/internal/filestorage"
	"educycle_backend/internal/impact"
	"educycle_backend/internal/jobs"
	"educycle_backend/internal/location"
	"educycle_backend/internal/middleware"
	"educycle_backend/internal/ngo"
	"educycle_backend/internal/note"
	"educycle_backend/internal/notification"
	"educycle_backend/internal/request"
	"educycle_backend/internal/shared"
	"educycle_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every HTTP module mounted under /api/v1.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Book         *book.Handler
	Request      *request.Handler
	Chat         *chat.Handler
	Notification *notification.Handler
	Credits      *credits.Handler
	Note         *note.Handler
	NGO          *ngo.Handler
	Feedback     *feedback.Handler
	Impact       *impact.Handler
	Location     *location.Handler
	Distribution *distribution.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger
	jobs       *jobs.MaintenanceJobs
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers *Handlers,
	maintenance *jobs.MaintenanceJobs,
	provider shared.IdentityProvider,
	users shared.UserService,
	files shared.FileStore,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 || (len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	if local, ok := files.(*filestorage.LocalStore); ok {
		router.Static("/static", local.Root())
	}

	Routes(router, handlers, middleware.AuthMiddleware(provider, users, logger.Named("AuthMiddleware")))

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	timeout := cfg.ServerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		logger:     logger,
		jobs:       maintenance,
	}, nil
}

// Routes mounts the health check and every module under /api/v1.
func Routes(router *gin.Engine, h *Handlers, authMW gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "EduCycle API is healthy!"})
	})

	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1, authMW)
	h.User.RegisterRoutes(v1, authMW)
	h.Book.RegisterRoutes(v1, authMW)
	h.Request.RegisterRoutes(v1, authMW)
	h.Chat.RegisterRoutes(v1, authMW)
	h.Credits.RegisterRoutes(v1, authMW)
	h.Note.RegisterRoutes(v1, authMW)
	h.NGO.RegisterRoutes(v1, authMW)
	h.Feedback.RegisterRoutes(v1, authMW)
	h.Impact.RegisterRoutes(v1, authMW)
	h.Location.RegisterRoutes(v1)
	h.Distribution.RegisterRoutes(v1, authMW)
	h.Notification.RegisterRoutes(v1.Group("/notifications", authMW))
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	if s.jobs != nil {
		if err := s.jobs.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start maintenance jobs", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.jobs != nil {
		s.jobs.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
