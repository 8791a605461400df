// Package mailer delivers rendered lure emails. The core performs no retry;
// a failed send is the recipient's failure for that dispatch.
package mailer

import (
	"context"

	"github.com/ignite/phishsim/internal/pkg/logger"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogSender logs instead of delivering. Used in development so campaigns can
// be dispatched without an ESP configured.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	logger.Info("dev sender, delivery suppressed", "email", to, "subject", subject)
	return nil
}
