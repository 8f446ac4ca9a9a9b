package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitbhavsaar/smart-crm-solutions/config"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/controller"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/repository"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/service"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/db"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/middleware"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/router"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/scheduler"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/storage"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/websocket"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Smart CRM Solutions Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; without it combination prices are computed on
	// every request and token blacklisting is disabled.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	templateRepo := repository.NewTemplateRepository(db.GetDB())
	variantRepo := repository.NewVariantRepository(db.GetDB())
	profileRepo := repository.NewProfileRepository(db.GetDB())
	leadRepo := repository.NewLeadRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	catalogService := service.NewCatalogService(templateRepo, variantRepo, profileRepo)
	submitService := service.NewSubmitService(leadRepo, templateRepo, s3Storage)
	leadService := service.NewLeadService(leadRepo)
	exportService := service.NewExportService(leadRepo)

	// Session event hub
	hub := websocket.NewHub()
	go hub.Run()

	backend := service.NewConfiguratorBackend(catalogService, submitService)
	sessionService := service.NewSessionService(backend, hub)

	// Idle sessions are discarded on a schedule
	sweeper := scheduler.NewSessionSweeper(sessionService, cfg.Session.TTL, cfg.Session.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	catalogController := controller.NewCatalogController(catalogService)
	leadController := controller.NewLeadController(leadService, exportService)
	configuratorController := controller.NewConfiguratorController(sessionService, hub)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		catalogController,
		leadController,
		configuratorController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
