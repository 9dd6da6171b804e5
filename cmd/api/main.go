package main

import (
	"context"
	"log"
	"time"

	"chat-rooms/config"
	"chat-rooms/internal/handler"
	"chat-rooms/internal/middleware"
	"chat-rooms/internal/redis"
	"chat-rooms/internal/repository"
	"chat-rooms/internal/server"
	"chat-rooms/internal/services"
	"chat-rooms/internal/storage"
	"chat-rooms/pkg/database"
	"chat-rooms/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	// Connect to Database
	database.Connect(cfg)
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	ctx := context.Background()
	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialise blob storage: %v", err)
	}

	var limiter middleware.Limiter
	if cfg.RedisEnabled {
		client, err := redis.Connect(ctx, redis.ConfigFrom(cfg), 5*time.Second)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		limiter = redis.NewRateLimiter(client, redis.RateLimitConfigFrom(cfg))
	}

	chatRepo := repository.NewChatRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	fileRepo := repository.NewFileRepository(database.DB)

	access := services.NewAccessControl(chatRepo)
	authService := services.NewAuthService(userRepo, cfg)
	chatService := services.NewChatService(chatRepo, userRepo, access, blobs, l)
	messageService := services.NewMessageService(messageRepo, access, l)
	fileService := services.NewFileService(fileRepo, access, blobs, cfg.MaxUploadBytes(), l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Chat:    handler.NewChatHandler(chatService),
		Message: handler.NewMessageHandler(messageService),
		File:    handler.NewFileHandler(fileService, cfg.MaxUploadBytes()),
	}, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}
