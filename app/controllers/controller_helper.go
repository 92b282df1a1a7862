package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/i18n"
)

// GetClientIP determines the client address. Forwarding headers are only
// honored when the request comes from a configured trusted proxy.
func GetClientIP(c *fiber.Ctx) string {
	remote := strings.TrimPrefix(c.IP(), "::ffff:")
	if !c.App().Config().EnableTrustedProxyCheck || !c.IsProxyTrusted() {
		return remote
	}
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	return remote
}

// localeParam reads ?locale=, falling back to Accept-Language.
func localeParam(c *fiber.Ctx) string {
	if l := c.Query("locale"); l != "" {
		return i18n.Normalize(l)
	}
	return i18n.FromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
}

// queryInt parses a non-negative integer query value.
func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// slugParam returns the wildcard slug of routes like /:postType/+.
func slugParam(c *fiber.Ctx) string {
	slug := c.Params("+")
	if slug == "" {
		slug = c.Params("slug")
	}
	return strings.Trim(slug, "/")
}

func badBody(c *fiber.Ctx) error {
	return action.Respond(c, action.BadRequest[any]("Invalid request body."))
}
