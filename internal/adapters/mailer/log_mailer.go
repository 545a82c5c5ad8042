package mailer

import (
	"context"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// LogMailer records replies in the log instead of delivering them. It is
// used when no outbound relay is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new log-only mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the reply
func (m *LogMailer) Send(ctx context.Context, reply *core.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("Reply not delivered, mailer disabled",
		zap.String("to", reply.To),
		zap.String("subject", reply.Subject),
		zap.Int("body_length", len(reply.Body)))
	return nil
}

var (
	_ core.Mailer = (*SMTPMailer)(nil)
	_ core.Mailer = (*LogMailer)(nil)
	_ core.Mailer = (*ResendMailer)(nil)
	_ core.Mailer = (*SendGridMailer)(nil)
)
