package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/studyforge/backend/studyforge/gamification"
	"github.com/studyforge/backend/studyforge/services"
)

// CustomErrorHandler maps domain errors escaping the handlers onto HTTP
// status codes. Conflict errors surface as 503 because the core already
// exhausted its internal retries by the time one reaches here.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	errCode := "INTERNAL_SERVER_ERROR"
	message := "Internal Server Error"

	var (
		validationErr  *gamification.ValidationError
		notFoundErr    *gamification.NotFoundError
		conflictErr    *gamification.ConcurrencyConflictError
		unavailableErr *gamification.StorageUnavailableError
		fiberErr       *fiber.Error
	)

	switch {
	case errors.As(err, &validationErr):
		code = fiber.StatusBadRequest
		errCode = "BAD_REQUEST"
		message = validationErr.Error()
	case errors.As(err, &notFoundErr):
		code = fiber.StatusNotFound
		errCode = "NOT_FOUND"
		message = notFoundErr.Error()
	case errors.Is(err, services.ErrSubscriptionRequired):
		code = fiber.StatusForbidden
		errCode = "FORBIDDEN"
		message = "Active subscription required"
	case errors.As(err, &unavailableErr), errors.As(err, &conflictErr):
		code = fiber.StatusServiceUnavailable
		errCode = "SERVICE_UNAVAILABLE"
		message = "Service temporarily unavailable, retry the request"
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		errCode = "REQUEST_FAILED"
		message = fiberErr.Message
	}

	if code == fiber.StatusInternalServerError || code == fiber.StatusServiceUnavailable {
		slog.Error("Unhandled API error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", code),
			slog.String("error", err.Error()))
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    errCode,
			"message": message,
		},
	})
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		return c.Next()
	}
}
