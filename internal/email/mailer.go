package email

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNotConfigured is returned by a mailer that is missing credentials.
var ErrNotConfigured = errors.New("email not configured")

// Message is a rendered email ready for delivery.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the logger instead of delivering them.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email not delivered (log driver)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)
	return nil
}
