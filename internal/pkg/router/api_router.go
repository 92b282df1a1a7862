package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/clawsite/clawsite/app/controllers"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/middleware"
	"github.com/clawsite/clawsite/internal/pkg/session"
)

type ApiRouter struct {
	svc *controllers.Services
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        env.GetEnvInt("RATE_LIMIT_API", 120),
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "api:" + controllers.GetClientIP(c)
		},
		Storage: session.RedisStorage(session.LimiterDB),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	if env.IsDev() {
		debug := controllers.NewDebugController(h.svc.DB)
		api.Get("/debug/db", debug.HandleDB)
		api.Get("/debug/blog", debug.HandleBlog)
	}

	v1 := api.Group("/v1")

	pricing := controllers.NewPricingController(h.svc.Pricing)
	v1.Get("/pricing", pricing.HandlePublicPlans)

	billing := controllers.NewBillingController(h.svc.Billing, h.svc.Credits)
	auth := controllers.NewAuthController(h.svc.OTP, h.svc.Mailer, h.svc.Captcha, h.svc.Users)
	v1.Get("/me", auth.HandleMe)
	v1.Get("/me/usage", middleware.RequireAuth, billing.HandleUsage)

	// Specific suffixes before the greedy slug route
	content := controllers.NewContentController(h.svc.CMS, h.svc.Views)
	v1.Get("/:postType", content.HandleList)
	v1.Get("/:postType/local", content.HandleLocalList)
	v1.Get("/:postType/static-params", content.HandleStaticParams)
	v1.Get("/:postType/sidebar", content.HandleSidebar)
	v1.Get("/:postType/+/metadata", content.HandleMetadata)
	v1.Get("/:postType/+/related", content.HandleRelated)
	v1.Get("/:postType/+/views", content.HandleGetViews)
	v1.Post("/:postType/+/views", content.HandleRecordView)
	v1.Get("/:postType/+", content.HandleGet)
}

func NewApiRouter(svc *controllers.Services) *ApiRouter {
	return &ApiRouter{svc: svc}
}
