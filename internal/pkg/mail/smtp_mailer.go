package mail

import (
	"fmt"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/internal/pkg/env"
)

// Sender delivers one HTML email.
type Sender interface {
	SendMail(to, subject, html string) error
}

// SMTPSender sends through the server configured by the SMTP_* settings.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func SMTPFromEnv() *SMTPSender {
	s := &SMTPSender{
		Host:     env.GetEnv("SMTP_HOST", ""),
		Port:     env.GetEnv("SMTP_PORT", "587"),
		Username: env.GetEnv("SMTP_USERNAME", ""),
		Password: env.GetEnv("SMTP_PASSWORD", ""),
		From:     env.GetEnv("SMTP_SENDER", ""),
	}
	if s.From == "" {
		s.From = "no-reply@localhost"
		log.Warnf("[Mail] SMTP_SENDER not set, using default sender: %s", s.From)
	}
	return s
}

func (s *SMTPSender) SendMail(to, subject, html string) error {
	if s.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	var auth smtp.Auth
	if s.Username != "" && s.Password != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", s.From, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			html,
	)

	err := smtp.SendMail(addr, auth, s.From, []string{to}, msg)
	if err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
	} else {
		log.Infof("[Mail] sent %q to %s via %s", subject, to, addr)
	}
	return err
}
