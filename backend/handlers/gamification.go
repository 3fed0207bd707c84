package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/studyforge/backend/backend/models"
	"github.com/studyforge/backend/backend/utils"
	"github.com/studyforge/backend/studyforge/gamification"
)

// RecordActivity handles POST /api/activities. The whole gamification
// pipeline runs inside one call: stats, streak, quests, badges.
func RecordActivity(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := utils.UserID(c)

		var req models.RecordActivityRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		act, err := gamification.NewActivity(req.ActivityType, req.Minutes, req.Score,
			req.SubjectID, req.CourseID, req.LessonID)
		if err != nil {
			return err
		}

		result, err := webApp.Gamification.ProcessActivity(c.Context(), userID, act)
		if err != nil {
			return err
		}

		slog.Info("Activity recorded",
			slog.String("user_id", userID),
			slog.String("activity_type", string(act.ActivityType())),
			slog.Int("new_badges", len(result.NewBadges)))

		return utils.SendCreated(c, result, "Activity recorded")
	}
}

// GetStats handles GET /api/stats.
func GetStats(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := webApp.Gamification.GetStats(c.Context(), utils.UserID(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, stats, "Stats retrieved")
	}
}

// GetBadges handles GET /api/badges.
func GetBadges(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		overview, err := webApp.Gamification.BadgeOverview(c.Context(), utils.UserID(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, overview, "Badges retrieved")
	}
}

// GetDailyQuests handles GET /api/quests/daily. The batch is created on first
// read of the day.
func GetDailyQuests(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		today := gamification.DayOf(time.Now())
		quests, err := webApp.Gamification.GetOrCreateDailyQuests(c.Context(), utils.UserID(c), today)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, quests, "Daily quests retrieved")
	}
}

// GetNotifications handles GET /api/notifications.
func GetNotifications(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pending, err := webApp.Notifications.Pending(c.Context(), utils.UserID(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, pending, "Pending notifications retrieved")
	}
}

// AcknowledgeNotification handles POST /api/notifications/:id/ack.
func AcknowledgeNotification(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return utils.SendBadRequest(c, "Notification id required", nil)
		}

		n, err := webApp.Notifications.Acknowledge(c.Context(), utils.UserID(c), id)
		if err != nil {
			return err
		}
		if n == nil {
			return utils.SendNotFound(c, "Notification not found or already acknowledged")
		}
		return utils.SendSuccess(c, n, "Notification acknowledged")
	}
}
