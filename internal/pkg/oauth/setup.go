package oauth

import (
	"strings"
	"time"

	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/fiber/v2/log"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/session"
)

// Setup registers the OAuth providers that have credentials configured and
// keeps OAuth state in Redis next to the app sessions. It returns the names
// of the enabled providers.
func Setup() []string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}

	var providers []goth.Provider
	if key := env.GetEnv("GOOGLE_KEY", ""); key != "" {
		providers = append(providers, google.New(
			key,
			env.GetEnv("GOOGLE_SECRET", ""),
			base+"/auth/google/callback",
			"email", "profile",
		))
	}
	if key := env.GetEnv("GITHUB_KEY", ""); key != "" {
		providers = append(providers, github.New(
			key,
			env.GetEnv("GITHUB_SECRET", ""),
			base+"/auth/github/callback",
			"read:user", "user:email",
		))
	}
	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	log.Infof("[OAuth] providers enabled: %v", names)

	gothfiber.SessionStore = fibersession.New(fibersession.Config{
		Storage:        session.RedisStorage(session.OAuthStateDB),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour,
	})
	return names
}
