package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/session"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

// SubscriberChecker decides the subscriber flag of a logged-in user.
type SubscriberChecker interface {
	IsSubscriber(ctx context.Context, userID string) bool
}

// UserContextMiddleware builds the UserContext for every request from the session.
func UserContextMiddleware(subs SubscriberChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// goth keeps its own session store on /auth/* routes.
		if strings.HasPrefix(c.Path(), "/auth/") && !strings.HasPrefix(c.Path(), "/auth/otp") && c.Path() != "/auth/logout" {
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		store := session.GetSessionStore()
		if store == nil {
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}
		sess, err := store.Get(c)
		if err != nil {
			log.Debugf("[Session] read failed: %v", err)
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		userID, _ := sess.Get(usercontext.KeyUserID).(string)
		if userID == "" {
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		name, _ := sess.Get(usercontext.KeyName).(string)
		email, _ := sess.Get(usercontext.KeyEmail).(string)
		role, _ := sess.Get(usercontext.KeyRole).(string)
		u := usercontext.UserContext{
			UserID:     userID,
			Name:       name,
			Email:      email,
			IsLoggedIn: true,
			IsAdmin:    role == models.ROLE_ADMIN,
		}
		if subs != nil {
			u.IsSubscriber = subs.IsSubscriber(c.UserContext(), userID)
		}
		usercontext.Set(c, u)
		return c.Next()
	}
}
