package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const sendGridHost = "https://api.sendgrid.com"

// SendGridMailer delivers replies through the SendGrid v3 mail send API
type SendGridMailer struct {
	apiKey string
	host   string
	from   *sgmail.Email
	logger *zap.Logger
}

// NewSendGridMailer creates a SendGrid mailer. BaseURL overrides the API host.
func NewSendGridMailer(cfg config.MailerConfig, logger *zap.Logger) (*SendGridMailer, error) {
	if err := core.RequireCredential("mailer.api_key", cfg.APIKey); err != nil {
		return nil, err
	}

	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, &core.ConfigurationError{Setting: "mailer.from", Reason: "is not a valid address"}
	}

	host := sendGridHost
	if cfg.BaseURL != "" {
		host = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &SendGridMailer{
		apiKey: strings.TrimSpace(cfg.APIKey),
		host:   host,
		from:   sgmail.NewEmail(from.Name, from.Address),
		logger: logger,
	}, nil
}

// Send delivers the reply as a plain text email
func (m *SendGridMailer) Send(ctx context.Context, reply *core.Reply) error {
	message := sgmail.NewSingleEmail(m.from, reply.Subject, sgmail.NewEmail("", reply.To), reply.Body, "")

	request := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to send reply via SendGrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("SendGrid rejected reply: status %d: %s", resp.StatusCode, resp.Body)
	}

	m.logger.Info("Reply delivered",
		zap.String("provider", "sendgrid"),
		zap.String("to", reply.To),
		zap.Strings("message_id", resp.Headers["X-Message-Id"]))
	return nil
}
