package controllers

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/clawsite/clawsite/internal/pkg/session"
	"github.com/clawsite/clawsite/internal/pkg/users"
)

// OAuthController runs the goth provider flow for Google and GitHub.
type OAuthController struct {
	users *users.Service
}

func NewOAuthController(svc *users.Service) *OAuthController {
	return &OAuthController{users: svc}
}

// HandleBegin redirects to the provider named by :provider.
func (oc *OAuthController) HandleBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleCallback completes the provider flow and logs the user in
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warnf("[OAuth] %s callback failed: %v", c.Params("provider"), err)
		return redirectWithError(c, "oauth_failed")
	}

	user, err := oc.users.SignIn(c.UserContext(), users.Identity{
		Provider:       u.Provider,
		ProviderUserID: u.UserID,
		Email:          u.Email,
		Name:           firstNonEmpty(u.Name, u.NickName),
		Image:          u.AvatarURL,
		AccessToken:    u.AccessToken,
		RefreshToken:   u.RefreshToken,
		ExpiresAt:      expiresAt(u.ExpiresAt),
	}, users.SourceFromRequest(c))
	if errors.Is(err, users.ErrBanned) {
		return redirectWithError(c, "banned")
	}
	if err != nil {
		log.Errorf("[OAuth] %s sign in failed: %v", u.Provider, err)
		return redirectWithError(c, "signin_failed")
	}

	if err := session.Login(c, user); err != nil {
		log.Errorf("[OAuth] session for %s failed: %v", user.ID, err)
		return redirectWithError(c, "session_failed")
	}
	_ = gothfiber.Logout(c)

	return c.Redirect("/", fiber.StatusSeeOther)
}

func redirectWithError(c *fiber.Ctx, code string) error {
	return c.Redirect("/login?error="+url.QueryEscape(code), fiber.StatusSeeOther)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func expiresAt(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
