package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/internal/pkg/cache"
	"github.com/clawsite/clawsite/internal/pkg/sitemap"
)

// HandleSitemap renders sitemap.xml from static pages and all post types.
func HandleSitemap(builder *sitemap.Builder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := sitemap.Render(builder.Build(c.UserContext()))
		if err != nil {
			log.Errorf("[Sitemap] render failed: %v", err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		return c.Send(body)
	}
}

// HandleHealth pings the database and Redis.
func HandleHealth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.Map{"time": time.Now().UTC().Format(time.RFC3339)}
		code := fiber.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status["database"] = "down"
			code = fiber.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}

		if client := cache.GetClient(); client == nil || client.Ping(c.UserContext()).Err() != nil {
			status["redis"] = "down"
		} else {
			status["redis"] = "ok"
		}
		return c.Status(code).JSON(status)
	}
}
