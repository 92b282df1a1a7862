package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/app/controllers"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/api/admin", middleware.RequireAdmin)

	adminGroup.Get("/dashboard", controllers.NewAdminController(h.svc.Stats).HandleDashboard)

	// Posts, tags and featured images
	var uploader cms.ObjectUploader
	if h.svc.Storage != nil {
		uploader = h.svc.Storage
	}
	posts := controllers.NewAdminPostController(h.svc.PostAdmin, h.svc.Tags, uploader)
	adminGroup.Get("/posts", posts.HandleList)
	adminGroup.Post("/posts", posts.HandleCreate)
	adminGroup.Post("/posts/image", posts.HandleUploadImage)
	adminGroup.Get("/posts/:id", posts.HandleGet)
	adminGroup.Put("/posts/:id", posts.HandleUpdate)
	adminGroup.Delete("/posts/:id", posts.HandleDelete)
	adminGroup.Get("/tags", posts.HandleListTags)
	adminGroup.Post("/tags", posts.HandleCreateTag)
	adminGroup.Put("/tags/:id", posts.HandleUpdateTag)
	adminGroup.Delete("/tags/:id", posts.HandleDeleteTag)

	// Pricing
	pricing := controllers.NewPricingController(h.svc.Pricing)
	adminGroup.Get("/pricing/groups", pricing.HandleListGroups)
	adminGroup.Post("/pricing/groups", pricing.HandleCreateGroup)
	adminGroup.Delete("/pricing/groups/:slug", pricing.HandleDeleteGroup)
	adminGroup.Get("/pricing/plans", pricing.HandleListPlans)
	adminGroup.Post("/pricing/plans", pricing.HandleCreatePlan)
	adminGroup.Get("/pricing/plans/:id", pricing.HandleGetPlan)
	adminGroup.Put("/pricing/plans/:id", pricing.HandleUpdatePlan)
	adminGroup.Delete("/pricing/plans/:id", pricing.HandleDeletePlan)

	// Users
	users := controllers.NewAdminUserController(h.svc.Users)
	adminGroup.Get("/users", users.HandleList)
	adminGroup.Get("/users/:id", users.HandleGet)
	adminGroup.Post("/users/:id/ban", users.HandleBan)
	adminGroup.Post("/users/:id/unban", users.HandleUnban)

	// Storage management
	var store controllers.ObjectStore
	if h.svc.Storage != nil {
		store = h.svc.Storage
	}
	storage := controllers.NewAdminStorageController(store)
	adminGroup.Get("/storage", storage.HandleList)
	adminGroup.Delete("/storage", storage.HandleDelete)
}
