// Package email delivers invoicehub transactional mail.
package email

import (
	"context"

	"github.com/jmerrifield20/invoicehub/internal/config"
	"go.uber.org/zap"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender when cfg names a host, otherwise a NoopSender.
func New(cfg config.EmailConfig, logger *zap.Logger) Sender {
	if cfg.SMTPHost == "" {
		logger.Info("email sender: noop (set email.smtp_host to enable SMTP)")
		return NewNoopSender(logger)
	}
	logger.Info("SMTP email sender configured", zap.String("host", cfg.SMTPHost))
	return NewSMTPSender(cfg)
}
