package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/clawsite/clawsite/app/controllers"
	"github.com/clawsite/clawsite/internal/pkg/cache"
	"github.com/clawsite/clawsite/internal/pkg/database"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/router"
	"github.com/clawsite/clawsite/internal/pkg/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	svc := NewServices(database.GetDB())

	jobs := scheduler.New(ctx)
	if err := jobs.Register(svc.Credits, svc.OTP); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	jobs.Start()
	// catch up on allocations missed while the server was down
	go jobs.RunNow(svc.Credits)

	app := NewApplication(svc)

	go func() {
		<-ctx.Done()
		jobs.Stop()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	if err != nil {
		log.Fatal(err)
	}
}

func NewApplication(svc *controllers.Services) *fiber.App {
	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/clawsite to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	// forwarding headers count only from these addresses (Cloudflare, the load balancer)
	proxies := env.GetEnvList("TRUSTED_PROXIES")
	app := fiber.New(fiber.Config{
		AppName:                 env.SiteName(),
		BodyLimit:               10 * 1024 * 1024, // featured images
		EnableTrustedProxyCheck: len(proxies) > 0,
		TrustedProxies:          proxies,
	})

	// ignore and cache favicon
	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	if pass := env.GetEnv("METRICS_PASSWORD", ""); pass != "" {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{
				env.GetEnv("METRICS_USER", "admin"): pass,
			},
		}), monitor.New())
	}

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	// ROUTER
	router.InstallRouter(app, svc)

	return app
}
