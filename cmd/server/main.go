package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/studyforge/backend/backend/config"
	"github.com/studyforge/backend/backend/handlers"
	"github.com/studyforge/backend/backend/middleware"
	"github.com/studyforge/backend/studyforge"
	"github.com/studyforge/backend/studyforge/database"
	"github.com/studyforge/backend/studyforge/database/repositories"
	"github.com/studyforge/backend/studyforge/gamification"
	"github.com/studyforge/backend/studyforge/leveling"
	"github.com/studyforge/backend/studyforge/logger"
	"github.com/studyforge/backend/studyforge/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Parse command line flags
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// Initialize logger first
	customHandler := logger.NewHandler("StudyForge-Backend")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting StudyForge Backend API",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("type", "backend"))

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	// Load configuration
	cfg, err := studyforge.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	// Create web app configuration
	webCfg := config.NewWebAppConfig(cfg, os.Getenv("ENVIRONMENT") != "production")

	// Initialize databases
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to databases...")
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}, database.MongoConfig{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		slog.Error("Failed to connect to databases", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Databases connected successfully")

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := db.InitializeBadgeData(ctx); err != nil {
		slog.Error("Failed to seed badge catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	statsRepo := repositories.NewStatsRepository(db.Mongo())
	badgeRepo := repositories.NewBadgeRepository(db.Mongo())
	questRepo := repositories.NewQuestRepository(db.Mongo())
	activityRepo := repositories.NewActivityRepository(db.Mongo())
	notificationRepo := repositories.NewNotificationRepository(db.Mongo())
	subscriptionRepo := repositories.NewSubscriptionRepository(db.BunDB())
	ebookRepo := repositories.NewEbookRepository(db.BunDB())

	// Initialize services
	spacesService := services.NewSpacesService(
		cfg.Spaces.Key,
		cfg.Spaces.Secret,
		cfg.Spaces.Region,
		cfg.Spaces.Bucket,
		cfg.Spaces.EbookRoot,
	)
	notificationService := services.NewNotificationService(notificationRepo, badgeRepo)
	ebookService := services.NewEbookService(ebookRepo, subscriptionRepo, spacesService)

	// Initialize gamification core
	gamCfg := gamification.NewDefaultConfig()
	if cfg.Gamify.DailyQuestCount > 0 {
		gamCfg.DailyQuestCount = cfg.Gamify.DailyQuestCount
	}
	if cfg.Gamify.DailyBonusXP > 0 {
		gamCfg.DailyBonusXP = cfg.Gamify.DailyBonusXP
	}
	calculator := leveling.NewCalculator(leveling.NewDefaultConfig())
	gamificationService := gamification.New(
		gamCfg,
		calculator,
		statsRepo,
		badgeRepo,
		questRepo,
		activityRepo,
		notificationService,
	)

	// Initialize Fiber as API-only backend
	app := fiber.New(fiber.Config{
		AppName:      "StudyForge Backend API",
		ServerHeader: "StudyForge-Backend",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowOrigins, ","),
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
	}))
	app.Use(middleware.LoggingMiddleware())

	// Create web app instance
	webApp := &handlers.WebApp{
		Config:        webCfg,
		DB:            db,
		Gamification:  gamificationService,
		Notifications: notificationService,
		Ebooks:        ebookService,
		Version:       version,
		Commit:        commit,
	}

	// Setup routes
	setupRoutes(app, webApp)

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("Starting backend server", slog.String("address", address))

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-c
	slog.Info("Shutting down backend server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	// Close database connections
	if err := db.Close(shutdownCtx); err != nil {
		slog.Error("Database shutdown error", slog.String("error", err.Error()))
	}

	slog.Info("Backend server shutdown complete")
}
