package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/app/controllers"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/middleware"
	"github.com/clawsite/clawsite/internal/pkg/oauth"
	"github.com/clawsite/clawsite/internal/pkg/session"
)

type HttpRouter struct {
	svc *controllers.Services
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	if session.GetSessionStore() == nil {
		session.NewSessionStore()
	}

	// init oauth providers
	oauth.Setup()

	// UserContext first, then the admin API key may upgrade it
	app.Use(middleware.UserContextMiddleware(h.svc.Users))
	app.Use(middleware.AdminAPIKey(env.GetEnv("ADMIN_API_KEY", "")))

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter(svc *controllers.Services) *HttpRouter {
	return &HttpRouter{svc: svc}
}
