package factory

import (
	"context"

	"github.com/mikey/support-triage/internal/adapters/bedrock"
	"github.com/mikey/support-triage/internal/adapters/claude"
	"github.com/mikey/support-triage/internal/adapters/gemini"
	"github.com/mikey/support-triage/internal/adapters/offline"
	"github.com/mikey/support-triage/internal/adapters/openai"
	"github.com/mikey/support-triage/internal/adapters/ratelimit"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

// GatewayFactory creates the language model gateway for the configured provider
type GatewayFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *GatewayFactory {
	return &GatewayFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateGateway creates a gateway based on llm.provider, throttled by
// llm.rate_limit. Credentials are validated here, so a bad key fails
// startup with a *core.ConfigurationError.
func (f *GatewayFactory) CreateGateway(ctx context.Context) (core.Gateway, error) {
	llm := f.cfg.GetLLM()

	gw, err := f.createProvider(ctx, llm.Provider)
	if err != nil {
		return nil, err
	}
	if llm.RateLimit > 0 {
		f.logger.Info("Throttling language model calls",
			zap.Float64("per_second", llm.RateLimit),
			zap.Int("burst", llm.RateBurst))
	}
	return ratelimit.Wrap(gw, llm.RateLimit, llm.RateBurst), nil
}

func (f *GatewayFactory) createProvider(ctx context.Context, provider string) (core.Gateway, error) {
	switch provider {
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateGateway(ctx)
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateGateway()
	case "anthropic":
		return claude.NewFactory(f.cfg, f.logger, f.textProcessor).CreateGateway()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateGateway(ctx)
	case "offline":
		f.logger.Warn("Language model disabled, every message uses keyword triage")
		return offline.NewGateway(), nil
	default:
		return nil, &core.ConfigurationError{Setting: "llm.provider", Reason: "has unsupported value " + provider}
	}
}
