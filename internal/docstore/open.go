package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/db"
)

// Open returns the store cfg selects: the in-process map when no database
// is configured, otherwise Postgres with migrations applied first when
// AutoMigrate is set. closeFn releases the backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store Store, closeFn func(), err error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("No DATABASE_URL configured, using in-memory document store")
		return NewMemory(), func() {}, nil
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)
	return NewPostgres(pool.Pool), pool.Close, nil
}
