// Package backend selects and wires a storage implementation from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"ledger/internal/config"
	"ledger/internal/ledger"
	"ledger/internal/storage"
	"ledger/internal/storage/memory"
	"ledger/internal/storage/postgres"
)

// Stores bundles the two persistence ports a backend provides.
type Stores struct {
	Categories   ledger.CategoryStore
	Transactions ledger.TransactionStore
}

// Result carries the stores plus an optional cleanup function.
type Result struct {
	Stores  Stores
	Cleanup func() error
}

// Open builds the backend named by cfg.Backend.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "sqlite":
		repo, err := storage.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{
			Stores:  Stores{Categories: repo, Transactions: repo},
			Cleanup: repo.Close,
		}, nil

	case "postgres":
		repo, err := postgres.New(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres backend: %w", err)
		}
		logger.Info("Initialized Postgres backend")
		return &Result{
			Stores:  Stores{Categories: repo, Transactions: repo},
			Cleanup: repo.Close,
		}, nil

	case "memory":
		store := memory.New()
		logger.Info("Initialized memory backend")
		return &Result{
			Stores: Stores{Categories: store, Transactions: store},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Backend)
	}
}
