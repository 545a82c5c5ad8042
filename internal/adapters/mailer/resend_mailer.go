package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendMailer delivers replies through the Resend HTTP API
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendMailer creates a Resend mailer. BaseURL overrides the API endpoint.
func NewResendMailer(cfg config.MailerConfig, logger *zap.Logger) (*ResendMailer, error) {
	if err := core.RequireCredential("mailer.api_key", cfg.APIKey); err != nil {
		return nil, err
	}

	client := resend.NewClient(strings.TrimSpace(cfg.APIKey))
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, &core.ConfigurationError{Setting: "mailer.base_url", Reason: "is not a valid URL"}
		}
		client.BaseURL = base
	}

	return &ResendMailer{client: client, from: cfg.From, logger: logger}, nil
}

// Send delivers the reply as a plain text email
func (m *ResendMailer) Send(ctx context.Context, reply *core.Reply) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{reply.To},
		Subject: reply.Subject,
		Text:    reply.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to send reply via Resend: %w", err)
	}

	m.logger.Info("Reply delivered",
		zap.String("provider", "resend"),
		zap.String("to", reply.To),
		zap.String("id", sent.Id))
	return nil
}
