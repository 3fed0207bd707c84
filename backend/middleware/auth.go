package middleware

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/studyforge/backend/backend/utils"
)

// AuthRequired middleware validates the bearer token and stores the subject
// user ID in the request context.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			slog.Debug("Auth required: invalid token", slog.Any("error", err))
			return utils.SendUnauthorized(c, "Invalid or expired token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendUnauthorized(c, "Invalid token claims")
		}
		subject, err := claims.GetSubject()
		if err != nil || subject == "" {
			return utils.SendUnauthorized(c, "Token missing subject")
		}

		// Store user in context
		c.Locals("user_id", subject)

		return c.Next()
	}
}
