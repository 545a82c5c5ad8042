package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/support-triage/internal/adapters/store"
	"github.com/mikey/support-triage/internal/config"
	"go.uber.org/zap"
)

// StoreFactory creates record repositories based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRepository creates a record repository based on the configuration
func (f *StoreFactory) CreateRepository() (store.Repository, error) {
	storeCfg := f.cfg.GetStore()

	switch storeCfg.Type {
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
	case "mysql":
		return store.NewMySQLStore(storeCfg.MySQLDSN, f.logger)
	case "postgres":
		return store.NewPostgresStore(storeCfg.PostgresDSN, f.logger)
	case "pebble":
		if err := os.MkdirAll(filepath.Dir(storeCfg.PebblePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create Pebble directory: %w", err)
		}
		return store.NewPebbleStore(storeCfg.PebblePath, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
