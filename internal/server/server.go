package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-rooms/config"
	"chat-rooms/internal/handler"
	"chat-rooms/internal/middleware"
	"chat-rooms/internal/services"
	"chat-rooms/internal/transport/httpdto"
	"chat-rooms/pkg/database"
	"chat-rooms/pkg/logger"

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
	Chat    *handler.ChatHandler
	Message *handler.MessageHandler
	File    *handler.FileHandler
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
	engine.MaxMultipartMemory = 8 << 20

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// SetupRoutes registers every route. limiter may be nil to disable rate
// limiting.
func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter middleware.Limiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware(s.config.CORSOrigins))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

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

	v1 := s.engine.Group("/v1", middleware.AuthMiddleware(authService))

	chats := v1.Group("/chats")
	{
		chats.GET("", handlers.Chat.List)
		chats.POST("", handlers.Chat.Create)
		chats.GET("/recent", handlers.Chat.Recent)
		chats.GET("/search", handlers.Chat.Search)
		chats.GET("/:id", handlers.Chat.Get)
		chats.PUT("/:id", handlers.Chat.Update)
		chats.PATCH("/:id", handlers.Chat.Update)
		chats.DELETE("/:id", handlers.Chat.Delete)
		chats.POST("/:id/add_participant", handlers.Chat.AddParticipant)
		chats.POST("/:id/remove_participant", handlers.Chat.RemoveParticipant)
	}

	messages := chats.Group("/:id/messages")
	{
		messages.GET("", handlers.Message.List)
		messages.POST("", middleware.MessageRateLimitMiddleware(limiter), handlers.Message.Create)
		messages.GET("/context", handlers.Message.ByContext)
		messages.GET("/:message_id", handlers.Message.Get)
		messages.PUT("/:message_id", handlers.Message.Update)
		messages.PATCH("/:message_id", handlers.Message.Update)
		messages.DELETE("/:message_id", handlers.Message.Delete)
	}

	files := chats.Group("/:id/files")
	{
		files.GET("", handlers.File.List)
		files.POST("", middleware.UploadRateLimitMiddleware(limiter), handlers.File.Upload)
		files.GET("/:file_id", handlers.File.Get)
		files.DELETE("/:file_id", handlers.File.Delete)
		files.GET("/:file_id/download", handlers.File.Download)
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
