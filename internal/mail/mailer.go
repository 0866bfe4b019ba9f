package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/clipsum/backend/pkg/config"
)

// Dispatcher sends a plain-text email.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, text string) error
}

// SMTPMailer delivers mail over plain-auth SMTP.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, text string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	// RFC 822 headers, CRLF-separated, blank line before the body
	headers := []string{
		fmt.Sprintf("From: %s", m.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		text,
	}
	message := strings.Join(headers, "\r\n")

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	m.logger.Debug("mail sent", "to", to, "subject", subject)
	return nil
}

// LogMailer logs outgoing mail instead of transmitting it. Used in tests and
// environments without SMTP credentials.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, text string) error {
	m.logger.Info("mail (log only)", "to", to, "subject", subject, "text", text)
	return nil
}

// New picks the dispatcher for the given config.
func New(cfg config.SMTPConfig, logger *slog.Logger) Dispatcher {
	if cfg.LogOnly || cfg.User == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg, logger)
}

var (
	_ Dispatcher = (*SMTPMailer)(nil)
	_ Dispatcher = (*LogMailer)(nil)
)
