package main

import (
	"context"
	"log"

	"folio-chat/config"
	"folio-chat/internal/access"
	"folio-chat/internal/handler"
	"folio-chat/internal/redis"
	"folio-chat/internal/repository"
	"folio-chat/internal/server"
	"folio-chat/internal/services"
	"folio-chat/internal/storage"
	"folio-chat/pkg/database"
	"folio-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(loggerMode(cfg.AppMode))
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	if _, _, err := database.SeedRolesAndPermissions(database.DB); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	media, err := newMediaStore(cfg)
	if err != nil {
		log.Fatalf("Failed to set up media storage: %v", err)
	}

	var limiter *redis.RateLimiter
	if cfg.RedisEnabled {
		redis.Initialize(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		limiter = redis.NewRateLimiter(redis.GetClient(), redis.DefaultRateLimitConfig())
	}

	userRepo := repository.NewUserRepository(database.DB)
	chatRepo := repository.NewChatRepository(database.DB)
	msgRepo := repository.NewMessageRepository(database.DB)

	ac := access.NewControl(chatRepo)

	authService := services.NewAuthService(userRepo, cfg)
	chatService := services.NewChatService(database.DB, chatRepo, userRepo, msgRepo, ac)
	participantService := services.NewParticipantService(chatRepo, userRepo, ac)
	messageService := services.NewMessageService(msgRepo, chatRepo, ac, media, cfg.MediaMaxBytes)

	handlers := &server.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Chat:        handler.NewChatHandler(chatService),
		Participant: handler.NewParticipantHandler(participantService),
		Message:     handler.NewMessageHandler(messageService),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func newMediaStore(cfg *config.Config) (storage.MediaStore, error) {
	if cfg.MediaDriver == "s3" {
		return storage.NewS3Store(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
	}
	return storage.NewLocalStore(cfg.MediaLocalDir, cfg.MediaPublicURL)
}

func loggerMode(appMode string) string {
	if appMode == server.ReleaseMode {
		return logger.ProductionMode
	}
	return logger.DevelopmentMode
}
