package main

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/studyforge/backend/backend/handlers"
	"github.com/studyforge/backend/backend/middleware"
)

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	// Health check endpoint
	app.Get("/health", handlers.HealthCheck(webApp))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "StudyForge Backend API",
			"version": webApp.Version,
			"status":  "running",
		})
	})

	// Authenticated API routes
	api := app.Group("/api")
	api.Use(middleware.AuthRequired(webApp.Config.Config.Auth.JWTSecret))

	// Gamification routes
	api.Post("/activities", handlers.RecordActivity(webApp))
	api.Get("/stats", handlers.GetStats(webApp))
	api.Get("/badges", handlers.GetBadges(webApp))
	api.Get("/quests/daily", handlers.GetDailyQuests(webApp))

	// Notification routes
	api.Get("/notifications", handlers.GetNotifications(webApp))
	api.Post("/notifications/:id/ack", handlers.AcknowledgeNotification(webApp))

	// Content routes
	api.Get("/ebooks", handlers.ListEbooks(webApp))
	api.Get("/ebooks/:id/download", handlers.EbookDownload(webApp))
	api.Get("/subscription", handlers.GetSubscription(webApp))

	// Global handler for unmatched routes
	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return c.Status(404).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested endpoint does not exist",
		})
	})
}
