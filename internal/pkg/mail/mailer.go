package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"

	"github.com/clawsite/clawsite/internal/pkg/billing"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/otp"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	templateOTPCode             = "otp_code"
	templateCreditUpgradeFailed = "credit_upgrade_failed"
)

// Mailer renders the site's transactional emails and hands them to a Sender.
type Mailer struct {
	sender     Sender
	engine     *html.Engine
	siteName   string
	siteURL    string
	adminEmail string
}

func NewMailer(sender Sender) *Mailer {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return &Mailer{
		sender:     sender,
		engine:     html.NewFileSystem(http.FS(sub), ".html"),
		siteName:   env.GetEnv("SITE_NAME", "clawsite"),
		siteURL:    strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/"),
		adminEmail: env.GetEnv("ADMIN_EMAIL", ""),
	}
}

func (m *Mailer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.engine.Render(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// SendOTP mails a sign-in code.
func (m *Mailer) SendOTP(to, code string) error {
	body, err := m.render(templateOTPCode, map[string]any{
		"SiteName":         m.siteName,
		"Code":             code,
		"ExpiresInMinutes": int(otp.TTL.Minutes()),
	})
	if err != nil {
		return err
	}
	return m.sender.SendMail(to, fmt.Sprintf("%s sign-in code: %s", m.siteName, code), body)
}

// CreditGrantFailed alerts ADMIN_EMAIL that a paid order did not receive credits.
func (m *Mailer) CreditGrantFailed(_ context.Context, f billing.GrantFailure) error {
	if m.adminEmail == "" {
		return errors.New("ADMIN_EMAIL not configured")
	}
	errText := ""
	if f.Err != nil {
		errText = f.Err.Error()
	}
	body, err := m.render(templateCreditUpgradeFailed, map[string]any{
		"UserID":     f.UserID,
		"OrderID":    f.OrderID,
		"PlanID":     f.PlanID,
		"EventID":    f.EventID,
		"EventType":  f.EventType,
		"Error":      errText,
		"WebhookURL": "https://dashboard.stripe.com/webhooks",
		"SiteURL":    m.siteURL,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("[%s] CRITICAL: credit grant failed for order %s", m.siteName, f.OrderID)
	return m.sender.SendMail(m.adminEmail, subject, body)
}
