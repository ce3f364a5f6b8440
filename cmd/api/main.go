package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/auth"
	"github.com/Sly695/GymEasIA/internal/config"
	"github.com/Sly695/GymEasIA/internal/database"
	"github.com/Sly695/GymEasIA/internal/handlers"
	"github.com/Sly695/GymEasIA/internal/inference"
	"github.com/Sly695/GymEasIA/internal/orchestrator"
	"github.com/Sly695/GymEasIA/internal/repository"
	"github.com/Sly695/GymEasIA/internal/router"
	"github.com/Sly695/GymEasIA/internal/service"
	"github.com/Sly695/GymEasIA/internal/storage"
	"github.com/Sly695/GymEasIA/internal/watchdog"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting API service...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")
	if err := database.Migrate(db.DB); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	var storageOpts []storage.Option
	if !cfg.MinIO.CreateBucket {
		storageOpts = append(storageOpts, storage.WithExistingBucketOnly())
	}
	minioClient, err := storage.NewClient(cfg.MinIO, storageOpts...)
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	storageService := storage.New(minioClient)
	logger.Info("Object storage initialized successfully", zap.String("bucket", cfg.MinIO.Bucket))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	resultRepo := repository.NewResultRepository(db)

	// Core processing pipeline
	invoker := inference.NewInvoker(cfg.Inference)
	orch := orchestrator.New(videoRepo, resultRepo, invoker, storageService, cfg.Inference, logger)

	// Services
	authService := auth.NewService(userRepo, cfg.Auth)
	videoService := service.NewVideoService(videoRepo, storageService, orch, cfg.Server)
	statusService := service.NewStatusService(videoRepo, resultRepo)

	// Stuck-video reporter
	dog := watchdog.New(videoRepo, cfg.Watchdog, logger)
	if err := dog.Start(); err != nil {
		logger.Fatal("Failed to start watchdog", zap.Error(err))
	}
	defer dog.Stop()

	r := router.New(router.Deps{
		Auth:      handlers.NewAuthHandler(authService, logger),
		Videos:    handlers.NewVideoHandler(videoService, logger),
		Inference: handlers.NewInferenceHandler(statusService, logger),
		Verifier:  authService,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
