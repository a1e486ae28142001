// Package mailer sends transactional email (password reset).
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"campdir/internal/config"
	"campdir/internal/middleware"
)

// Mailer delivers a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

// NewSMTPMailer builds an SMTPMailer from config.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.fromName, m.from, to, subject, body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("email could not be sent: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer logs messages instead of sending them. Used in development and
// tests when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	middleware.Logger.InfoContext(ctx, "email (log mailer)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

// FromConfig picks the SMTP mailer when a relay is configured, the log
// mailer otherwise.
func FromConfig(cfg *config.Config) Mailer {
	if cfg.SMTPHost != "" {
		return NewSMTPMailer(cfg)
	}
	return LogMailer{}
}
