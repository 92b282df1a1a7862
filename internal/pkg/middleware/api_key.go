package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

// AdminAPIKey lets automation reach admin routes with a static key sent as
// X-API-Key or a bearer token. It must run after UserContextMiddleware.
// Requests without a key fall through to the session. An empty configured
// key disables the check.
func AdminAPIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		presented := extractAPIKeyFromHeader(c)
		if presented == "" {
			return c.Next()
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid API key",
			})
		}
		usercontext.Set(c, usercontext.UserContext{
			UserID:     "api-key",
			Name:       "automation",
			IsLoggedIn: true,
			IsAdmin:    true,
		})
		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
