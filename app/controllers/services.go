package controllers

import (
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/internal/pkg/billing"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/credits"
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

// Services bundles everything the controllers need. Storage may be nil when
// R2 is not configured.
type Services struct {
	DB        *gorm.DB
	CMS       *cms.Registry
	PostAdmin *cms.PostAdmin
	Tags      *cms.TagService
	Views     *counter.Counter
	Pricing   *pricing.Service
	Credits   *credits.Service
	Users     *users.Service
	OTP       *otp.Service
	Mailer    *mail.Mailer
	Captcha   *hcaptcha.Verifier
	Billing   *billing.Processor
	Storage   *storage.Client
	Sitemap   *sitemap.Builder
	Stats     *statistics.Service
}
