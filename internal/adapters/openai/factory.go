package openai

import (
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

// Factory creates OpenAI gateways
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new OpenAI factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateGateway creates a new OpenAI gateway from the openai.* settings
func (f *Factory) CreateGateway() (core.Gateway, error) {
	return NewGateway(f.cfg.GetOpenAI(), f.logger, f.textProcessor)
}
