package gemini

import (
	"context"

	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Gemini gateways
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Gemini factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateGateway creates a new Gemini gateway from the gemini.* settings
func (f *Factory) CreateGateway(ctx context.Context) (core.Gateway, error) {
	return NewGateway(ctx, f.cfg.GetGemini(), f.logger, f.textProcessor)
}
