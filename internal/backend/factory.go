// Package backend selects the persistence gateway from configuration.
package backend

import (
	"fmt"
	"log/slog"

	"finbook/internal/config"
	"finbook/internal/finance"
	"finbook/internal/memstore"
	"finbook/internal/storage"
	"finbook/internal/worker"
)

// Result bundles a ready store with its cleanup hook. Queue exposes the
// pending-sync side of the same gateway.
type Result struct {
	Store   finance.Store
	Queue   worker.SyncQueue
	Cleanup func() error
}

// Open creates the store named by cfg.DataBackend.
func Open(cfg *config.Config) (*Result, error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		slog.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{
			Store:   repo,
			Queue:   repo,
			Cleanup: repo.Close,
		}, nil

	case "memory":
		store := memstore.New()
		slog.Info("Initialized memory backend")
		return &Result{
			Store:   store,
			Queue:   store,
			Cleanup: func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
