package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

// RequireAuth answers 401 unless the request carries a logged-in session.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return action.Respond(c, action.Unauthorized[any]("Login required."))
	}
	return c.Next()
}

// RequireAdmin answers 401 for anonymous and 403 for non-admin requests.
func RequireAdmin(c *fiber.Ctx) error {
	u := usercontext.GetUserContext(c)
	if !u.IsLoggedIn {
		return action.Respond(c, action.Unauthorized[any]("Login required."))
	}
	if !u.IsAdmin {
		return action.Respond(c, action.Forbidden[any]("Admin access required."))
	}
	return c.Next()
}
