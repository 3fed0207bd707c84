package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studyforge/backend/backend/config"
	"github.com/studyforge/backend/backend/utils"
	"github.com/studyforge/backend/studyforge/database"
	"github.com/studyforge/backend/studyforge/gamification"
	"github.com/studyforge/backend/studyforge/services"
)

// WebApp bundles everything the HTTP handlers need.
type WebApp struct {
	Config        *config.WebAppConfig
	DB            *database.DB
	Gamification  *gamification.Service
	Notifications *services.NotificationService
	Ebooks        *services.EbookService
	Version       string
	Commit        string
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := webApp.DB.Ping(c.Context()); err != nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
				"Database unreachable", nil)
		}

		return utils.SendSuccess(c, fiber.Map{
			"status":  "healthy",
			"version": webApp.Version,
			"commit":  webApp.Commit,
		}, "Health check successful")
	}
}
