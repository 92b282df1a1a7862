package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/app/controllers"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/sitemap.xml", controllers.HandleSitemap(h.svc.Sitemap))
	app.Get("/health", controllers.HandleHealth(h.svc.DB))

	// Social OAuth
	oauthController := controllers.NewOAuthController(h.svc.Users)
	app.Get("/auth/:provider/callback", oauthController.HandleCallback)
	app.Get("/auth/:provider", oauthController.HandleBegin)

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	billingController := controllers.NewBillingController(h.svc.Billing, h.svc.Credits)
	app.Post("/api/webhooks/stripe", billingController.HandleStripeWebhook)
}
