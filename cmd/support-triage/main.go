package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/support-triage/internal/adapters/store"
	"github.com/mikey/support-triage/internal/api"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/dataset"
	"github.com/mikey/support-triage/internal/di"
	"github.com/mikey/support-triage/internal/ports"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Pick up SUPPORT_TRIAGE_* settings from a local .env when present
	_ = godotenv.Load(".env")

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	httpAPI *api.API,
	registry *prometheus.Registry,
	inbox *core.InboxService,
	loader *dataset.Loader,
	intakes []ports.Intake,
	gateway core.Gateway,
	repo store.Repository,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the dataset before serving so the dashboard starts populated
	if ds := cfg.GetDataset(); ds.LoadOnStart && ds.Path != "" {
		if err := loadDataset(ctx, logger, loader, inbox, ds.Path); err != nil {
			logger.Error("Failed to load dataset", zap.String("path", ds.Path), zap.Error(err))
		}
	}

	serverCfg := cfg.GetServer()
	server := &http.Server{
		Addr:         serverCfg.ListenAddress,
		Handler:      httpAPI.Handler(registry),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", zap.String("address", serverCfg.ListenAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Start the intakes
	for _, in := range intakes {
		if err := in.Start(); err != nil {
			logger.Error("Failed to start intake", zap.String("intake", in.Name()), zap.Error(err))
			stop()
			break
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	for _, in := range intakes {
		if err := in.Stop(); err != nil {
			logger.Error("Failed to stop intake", zap.String("intake", in.Name()), zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := gateway.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close gateway", zap.Error(err))
		}
	}
	if err := repo.Close(); err != nil {
		logger.Error("Failed to close store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return runErr
}

func loadDataset(ctx context.Context, logger *zap.Logger, loader *dataset.Loader, inbox *core.InboxService, path string) error {
	msgs, err := loader.LoadFile(path)
	if err != nil {
		return err
	}

	records, err := inbox.Import(ctx, msgs)
	if err != nil {
		return err
	}

	logger.Info("Dataset loaded",
		zap.String("path", path),
		zap.Int("rows", len(msgs)),
		zap.Int("records", len(records)))
	return nil
}
