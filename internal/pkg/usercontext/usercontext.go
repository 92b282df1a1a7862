package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/internal/pkg/cms"
)

// UserContext represents the session state of a request
type UserContext struct {
	UserID       string `json:"userId,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	IsLoggedIn   bool   `json:"isLoggedIn"`
	IsAdmin      bool   `json:"isAdmin"`
	IsSubscriber bool   `json:"isSubscriber"`
}

// Viewer is the part of the context content gating looks at.
func (u UserContext) Viewer() cms.Viewer {
	return cms.Viewer{IsLoggedIn: u.IsLoggedIn, IsSubscriber: u.IsSubscriber}
}

// Set stores u for the rest of the request.
func Set(c *fiber.Ctx, u UserContext) {
	c.Locals(localsKey, u)
}

// GetUserContext retrieves the user context from fiber context
// Returns an anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if u, ok := c.Locals(localsKey).(UserContext); ok {
		return u
	}
	return UserContext{}
}

func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's ID, or "" if not logged in
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}
