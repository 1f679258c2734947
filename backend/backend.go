// Package backend turns configuration into a ready Store. The emulator flag
// picks the in-memory driver or the SQLite driver; callers see the same
// Store either way.
package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/asaidimu/go-docstore/config"
	"github.com/asaidimu/go-docstore/core/persistence"
	"github.com/asaidimu/go-docstore/sqlite"
	"go.uber.org/zap"
)

// Open builds a Store from cfg.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*persistence.Store, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	driver, err := openDriver(ctx, cfg.Backend, logger)
	if err != nil {
		return nil, err
	}

	store, err := persistence.New(driver, &persistence.Options{
		Logger:        logger,
		DisableEvents: !cfg.Events.Enabled,
	})
	if err != nil {
		driver.Close()
		return nil, err
	}
	return store, nil
}

func openDriver(ctx context.Context, cfg config.BackendConfig, logger *zap.Logger) (persistence.Driver, error) {
	if cfg.UseEmulator {
		logger.Info("Using in-memory emulator")
		return persistence.NewMemoryDriver(logger), nil
	}

	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	logger.Info("Using SQLite backend", zap.String("path", cfg.SQLitePath))
	d, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	return d, nil
}
