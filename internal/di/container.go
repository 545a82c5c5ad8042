package di

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/support-triage/internal/adapters/intake"
	"github.com/mikey/support-triage/internal/adapters/store"
	"github.com/mikey/support-triage/internal/api"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/dataset"
	"github.com/mikey/support-triage/internal/factory"
	"github.com/mikey/support-triage/internal/logging"
	"github.com/mikey/support-triage/internal/metrics"
	"github.com/mikey/support-triage/internal/ports"
	"github.com/mikey/support-triage/internal/responder"
	"github.com/mikey/support-triage/internal/supportfilter"
	"github.com/mikey/support-triage/internal/triage"
	"github.com/mikey/support-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		return reg
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(reg *prometheus.Registry) *metrics.Metrics {
		return metrics.New(reg)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := provideFactories(container); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return nil, err
	}

	// Register gateway, instrumented per provider
	if err := container.Provide(func(f *factory.GatewayFactory, cfg *config.Config, m *metrics.Metrics) (core.Gateway, error) {
		gw, err := f.CreateGateway(context.Background())
		if err != nil {
			return nil, err
		}
		return m.InstrumentGateway(cfg.GetLLM().Provider, gw), nil
	}); err != nil {
		return nil, err
	}

	// Register triage pipeline
	if err := container.Provide(responder.NewSynthesizer); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		gw core.Gateway,
		synth *responder.Synthesizer,
		textProcessor *utils.TextProcessor,
		cfg *config.Config,
		logger *zap.Logger,
		m *metrics.Metrics,
	) *triage.Pipeline {
		return triage.NewPipeline(gw, synth, textProcessor, cfg.GetTriage().MaxBodySize, logger, m.TriageHooks())
	}); err != nil {
		return nil, err
	}

	// Register record store
	if err := container.Provide(func(f *factory.StoreFactory) (store.Repository, error) {
		return f.CreateRepository()
	}); err != nil {
		return nil, err
	}

	// Register mailer
	if err := container.Provide(func(f *factory.MailerFactory) (core.Mailer, error) {
		return f.CreateMailer()
	}); err != nil {
		return nil, err
	}

	// Register support filter
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *supportfilter.Checker {
		keywords := cfg.GetSupportKeywords()
		if len(keywords) > 0 {
			logger.Info("Loaded support keywords", zap.Strings("keywords", keywords))
		}
		return supportfilter.NewChecker(keywords, logger)
	}); err != nil {
		return nil, err
	}

	// Register inbox service
	if err := container.Provide(func(
		pipeline *triage.Pipeline,
		repo store.Repository,
		filter *supportfilter.Checker,
		mailer core.Mailer,
		cfg *config.Config,
		logger *zap.Logger,
		m *metrics.Metrics,
	) *core.InboxService {
		triageCfg := cfg.GetTriage()
		return core.NewInboxService(pipeline, repo, filter, mailer, logger,
			triageCfg.Concurrency, triageCfg.Timeout, m.InboxHooks())
	}); err != nil {
		return nil, err
	}

	// Register intakes
	if err := container.Provide(func(f *factory.IntakeFactory) []ports.Intake {
		return f.CreateIntakes()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(inbox *core.InboxService) intake.Importer {
		return inbox
	}); err != nil {
		return nil, err
	}

	// Register dataset loader
	if err := container.Provide(dataset.NewLoader); err != nil {
		return nil, err
	}

	// Register HTTP API
	if err := container.Provide(func(
		logger *zap.Logger,
		pipeline *triage.Pipeline,
		inbox *core.InboxService,
		cfg *config.Config,
	) *api.API {
		return api.New(logger, pipeline, inbox, cfg.GetServer().IsDevelopment())
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideFactories registers the factories shared by the server and the CLI
func provideFactories(container *dig.Container) error {
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	return container.Provide(factory.NewGatewayFactory)
}
