package factory

import (
	"github.com/mikey/support-triage/internal/adapters/intake"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/ports"
	"go.uber.org/zap"
)

// IntakeFactory creates the mail intakes enabled in configuration
type IntakeFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	importer intake.Importer
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(cfg *config.Config, logger *zap.Logger, importer intake.Importer) *IntakeFactory {
	return &IntakeFactory{
		cfg:      cfg,
		logger:   logger,
		importer: importer,
	}
}

// CreateIntakes returns every enabled intake. The result is empty when mail
// only arrives through the dataset or the API.
func (f *IntakeFactory) CreateIntakes() []ports.Intake {
	var intakes []ports.Intake

	if smtpCfg := f.cfg.GetSMTPIntake(); smtpCfg.Enabled {
		intakes = append(intakes, intake.NewSMTPIntake(f.importer, f.logger.Named("smtp"), smtpCfg))
	}
	if imapCfg := f.cfg.GetIMAPIntake(); imapCfg.Enabled {
		intakes = append(intakes, intake.NewIMAPIntake(f.importer, f.logger.Named("imap"), imapCfg))
	}

	return intakes
}
