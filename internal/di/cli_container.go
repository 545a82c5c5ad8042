package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/support-triage/internal/adapters/mailer"
	"github.com/mikey/support-triage/internal/adapters/store"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/dataset"
	"github.com/mikey/support-triage/internal/factory"
	"github.com/mikey/support-triage/internal/logging"
	"github.com/mikey/support-triage/internal/responder"
	"github.com/mikey/support-triage/internal/triage"
	"github.com/mikey/support-triage/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string
	OpenAIBaseURL   string

	// Anthropic flags
	AnthropicAPIKey    string
	AnthropicModelName string

	// Batch flags
	Concurrency int

	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := provideFactories(container); err != nil {
		return nil, err
	}

	// Register gateway
	if err := container.Provide(func(f *factory.GatewayFactory) (core.Gateway, error) {
		return f.CreateGateway(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register triage pipeline without metrics
	if err := container.Provide(responder.NewSynthesizer); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		gw core.Gateway,
		synth *responder.Synthesizer,
		textProcessor *utils.TextProcessor,
		cfg *config.Config,
		logger *zap.Logger,
	) *triage.Pipeline {
		return triage.NewPipeline(gw, synth, textProcessor, cfg.GetTriage().MaxBodySize, logger, triage.Hooks{})
	}); err != nil {
		return nil, err
	}

	// Register an in-memory inbox for batch runs. Every row is triaged and
	// replies are never sent.
	if err := container.Provide(func(
		pipeline *triage.Pipeline,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.InboxService {
		triageCfg := cfg.GetTriage()
		return core.NewInboxService(pipeline, store.NewMemoryStore(logger), nil, mailer.NewLogMailer(logger), logger,
			triageCfg.Concurrency, triageCfg.Timeout, core.InboxHooks{})
	}); err != nil {
		return nil, err
	}

	// Register dataset loader
	if err := container.Provide(dataset.NewLoader); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.base_url", flags.OpenAIBaseURL)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	case "anthropic":
		v.Set("anthropic.api_key", flags.AnthropicAPIKey)
		v.Set("anthropic.model_name", flags.AnthropicModelName)
		v.Set("anthropic.max_tokens", flags.MaxTokens)
		v.Set("anthropic.temperature", flags.Temperature)
		v.Set("anthropic.max_body_size", flags.MaxBodySize)
	}

	if flags.Concurrency > 0 {
		v.Set("triage.concurrency", flags.Concurrency)
	}

	return config.NewFromViper(v)
}
