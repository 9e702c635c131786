package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio-chat/config"
	"folio-chat/internal/handler"
	"folio-chat/internal/middleware"
	"folio-chat/internal/redis"
	"folio-chat/internal/services"
	"folio-chat/internal/transport/httpdto"
	"folio-chat/pkg/database"
	"folio-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Chat        *handler.ChatHandler
	Participant *handler.ParticipantHandler
	Message     *handler.MessageHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	s.engine.Use(middleware.RateLimitMiddleware(limiter))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	// Local media driver serves uploads straight from disk.
	if s.config.MediaDriver == "local" {
		s.engine.Static(s.config.MediaPublicURL, s.config.MediaLocalDir)
	}

	requireAuth := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	s.engine.GET("/v1/roles", requireAuth, handlers.Participant.Roles)

	chats := s.engine.Group("/v1/chats", requireAuth)
	{
		chats.POST("", handlers.Chat.Create)
		chats.GET("", handlers.Chat.List)
		chats.GET("/:id", handlers.Chat.GetByID)
		chats.PATCH("/:id", handlers.Chat.Update)
		chats.DELETE("/:id", handlers.Chat.Delete)
		chats.POST("/:id/leave", handlers.Chat.Leave)

		chats.GET("/:id/participants", handlers.Participant.List)
		chats.POST("/:id/participants", handlers.Participant.Add)
		chats.DELETE("/:id/participants/:user_id", handlers.Participant.Remove)
		chats.PATCH("/:id/participants/:user_id/role", handlers.Participant.UpdateRole)

		chats.GET("/:id/messages", handlers.Message.List)
		chats.POST("/:id/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Message.Send)
		chats.PATCH("/:id/messages/:message_id", handlers.Message.Edit)
		chats.DELETE("/:id/messages/:message_id", handlers.Message.Delete)
		chats.POST("/:id/messages/:message_id/pin", handlers.Message.Pin)
		chats.DELETE("/:id/messages/:message_id/pin", handlers.Message.Unpin)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
