package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, svc *controllers.Services) {
	// HttpRouter first: it installs the session store, oauth providers and
	// the global UserContext middleware the API routes depend on.
	setup(app, NewHttpRouter(svc), NewApiRouter(svc))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
