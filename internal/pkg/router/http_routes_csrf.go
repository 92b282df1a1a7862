package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/clawsite/clawsite/app/controllers"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/session"
)

// registerCSRFProtectedRoutes mounts the email login. The frontend fetches a
// token from GET /auth/csrf and echoes it in X-CSRF-Token.
func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "header:" + csrf.HeaderName,
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	corsConf := cors.Config{
		AllowOrigins:     env.GetEnv("PUBLIC_DOMAIN", "http://localhost:3000"),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, " + csrf.HeaderName,
	}

	// login codes are mailed, keep senders slow
	otpLimiter := limiter.New(limiter.Config{
		Max:        env.GetEnvInt("RATE_LIMIT_OTP", 5),
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "otp:" + controllers.GetClientIP(c)
		},
		Storage: session.RedisStorage(session.LimiterDB),
	})

	verifyLimiter := limiter.New(limiter.Config{
		Max:          env.GetEnvInt("RATE_LIMIT_OTP_VERIFY", 10),
		Expiration:   10 * time.Minute,
		KeyGenerator: controllers.OTPVerifyKey,
		Storage:      session.RedisStorage(session.LimiterDB),
	})

	auth := controllers.NewAuthController(h.svc.OTP, h.svc.Mailer, h.svc.Captcha, h.svc.Users)

	group := app.Group("/auth", cors.New(corsConf), csrf.New(csrfConf))
	group.Get("/csrf", func(c *fiber.Ctx) error {
		token, _ := c.Locals("csrf").(string)
		return c.JSON(fiber.Map{"token": token})
	})
	group.Post("/otp/request", otpLimiter, auth.HandleRequestOTP)
	group.Post("/otp/verify", verifyLimiter, auth.HandleVerifyOTP)
	group.Post("/logout", auth.HandleLogout)
}
