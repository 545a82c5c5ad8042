package factory

import (
	"github.com/mikey/support-triage/internal/adapters/mailer"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// MailerFactory creates the outbound mailer
type MailerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailerFactory creates a new mailer factory
func NewMailerFactory(cfg *config.Config, logger *zap.Logger) *MailerFactory {
	return &MailerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailer returns the mailer for mailer.provider when enabled, otherwise
// a mailer that only logs replies
func (f *MailerFactory) CreateMailer() (core.Mailer, error) {
	mailerCfg := f.cfg.GetMailer()
	if !mailerCfg.Enabled {
		return mailer.NewLogMailer(f.logger), nil
	}

	switch mailerCfg.Provider {
	case "", "smtp":
		f.logger.Info("Using SMTP mailer",
			zap.String("address", mailerCfg.MailerAddress()),
			zap.String("from", mailerCfg.From))
		return mailer.NewSMTPMailer(mailerCfg, f.logger), nil
	case "resend":
		f.logger.Info("Using Resend mailer", zap.String("from", mailerCfg.From))
		return mailer.NewResendMailer(mailerCfg, f.logger)
	case "sendgrid":
		f.logger.Info("Using SendGrid mailer", zap.String("from", mailerCfg.From))
		return mailer.NewSendGridMailer(mailerCfg, f.logger)
	default:
		return nil, &core.ConfigurationError{Setting: "mailer.provider", Reason: "has unsupported value " + mailerCfg.Provider}
	}
}
