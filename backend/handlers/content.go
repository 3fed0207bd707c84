package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/studyforge/backend/backend/utils"
)

// ListEbooks handles GET /api/ebooks. Supports fuzzy title search via ?q=
// and subject filtering via ?subject_id=.
func ListEbooks(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("q"))
		subjectID := strings.TrimSpace(c.Query("subject_id"))

		books, err := webApp.Ebooks.Search(c.Context(), query, subjectID)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, books, "Ebooks retrieved")
	}
}

// EbookDownload handles GET /api/ebooks/:id/download and responds with a
// short-lived presigned URL.
func EbookDownload(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid ebook id", nil)
		}

		url, err := webApp.Ebooks.DownloadURL(c.Context(), utils.UserID(c), id)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, fiber.Map{"url": url}, "Download URL generated")
	}
}

// GetSubscription handles GET /api/subscription.
func GetSubscription(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, err := webApp.Ebooks.Subscription(c.Context(), utils.UserID(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, sub, "Subscription retrieved")
	}
}
