package main

import (
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/controllers"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/billing"
	"github.com/clawsite/clawsite/internal/pkg/cache"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/credits"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/hcaptcha"
	"github.com/clawsite/clawsite/internal/pkg/mail"
	"github.com/clawsite/clawsite/internal/pkg/metrics/counter"
	"github.com/clawsite/clawsite/internal/pkg/otp"
	"github.com/clawsite/clawsite/internal/pkg/pricing"
	"github.com/clawsite/clawsite/internal/pkg/sitemap"
	"github.com/clawsite/clawsite/internal/pkg/statistics"
	"github.com/clawsite/clawsite/internal/pkg/storage"
	"github.com/clawsite/clawsite/internal/pkg/users"
)

// NewServices wires repositories, caches and domain services on db.
func NewServices(db *gorm.DB) *controllers.Services {
	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()

	var tagIDs cms.TagIDCache = cms.NopTagIDCache{}
	var views *counter.Counter
	if client := cache.GetClient(); client != nil {
		tagIDs = cms.NewRedisTagIDCache(client)
		views = counter.New(counter.NewRedisStore(client), counter.ConfigsFromEnv())
	}

	registry, err := cms.NewRegistry(cms.Deps{
		ContentDir: env.GetEnv("CONTENT_DIR", "content"),
		Posts:      repos.Post,
		Tags:       repos.Tag,
		TagIDs:     tagIDs,
	})
	if err != nil {
		panic(err)
	}

	pricingService := pricing.NewService(repos.Pricing, pricing.Environment())
	creditService := credits.NewService(db, repos.Pricing)
	userService := users.NewService(repos.User, creditService)
	mailer := mail.NewMailer(mail.SMTPFromEnv())

	svc := &controllers.Services{
		DB:        db,
		CMS:       registry,
		PostAdmin: cms.NewPostAdmin(repos.Post, repos.Tag, tagIDs),
		Tags:      cms.NewTagService(repos.Tag, registry, cms.NewTagCache(), tagIDs),
		Views:     views,
		Pricing:   pricingService,
		Credits:   creditService,
		Users:     userService,
		OTP:       otp.NewService(repos.Verification),
		Mailer:    mailer,
		Captcha:   hcaptcha.FromEnv(),
		Billing: billing.NewProcessor(
			billing.NewRepository(db),
			creditService,
			mailer,
			env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		),
		Sitemap: sitemap.NewBuilder(registry, env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")),
		Stats:   statistics.NewService(db, cache.GetClient()),
	}

	if cfg, err := storage.LoadConfig(); err != nil {
		log.Warnf("[Storage] R2 disabled: %v", err)
	} else if client, err := storage.NewClient(cfg); err != nil {
		log.Errorf("[Storage] R2 client failed: %v", err)
	} else {
		svc.Storage = client
	}
	return svc
}
