// Package storage opens the configured persistence backend behind the UnitOfWork port.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker/internal/platform/config"
	"github.com/SscSPs/money_tracker/internal/repositories/database/pgsql"
	"github.com/SscSPs/money_tracker/internal/repositories/database/sqlite"
	"github.com/SscSPs/money_tracker/pkg/database"
)

// Open migrates the configured store and returns a unit of work over it.
// The caller owns the result and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.UnitOfWork, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		logger.Info("Running database migrations...")
		if err := pgsql.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, err
		}
		return pgsql.NewUnitOfWork(pool), nil

	case config.DriverSQLite:
		uow, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("SQLite database ready", slog.String("path", cfg.SQLitePath))
		return uow, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Migrate applies pending migrations without keeping a connection open.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return pgsql.RunMigrations(cfg.DatabaseURL, logger)
	case config.DriverSQLite:
		uow, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		uow.Close()
		logger.Info("Database migrations applied successfully.", slog.String("path", cfg.SQLitePath))
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
