package claude

import (
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Anthropic gateways
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Anthropic factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateGateway creates a new Anthropic gateway from the anthropic.* settings
func (f *Factory) CreateGateway() (core.Gateway, error) {
	return NewGateway(f.cfg.GetAnthropic(), f.logger, f.textProcessor)
}
