// Package infrastructure selects the snapshot backend named in config.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/pin-vault/config"
	"github.com/ErlanBelekov/pin-vault/internal/infrastructure/file"
	"github.com/ErlanBelekov/pin-vault/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/pin-vault/internal/repository"
)

// OpenSnapshotRepository returns the configured backend and a function
// releasing its resources. The postgres backend is migrated before use.
func OpenSnapshotRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.SnapshotRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("storage backend ready", "backend", cfg.StorageBackend)
		return postgres.NewSnapshotRepository(pool), pool.Close, nil
	case config.BackendFile:
		logger.Info("storage backend ready", "backend", cfg.StorageBackend, "path", cfg.DataFile)
		return file.NewSnapshotRepository(cfg.DataFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
