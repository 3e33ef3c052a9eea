// Package bootstrap wires infrastructure shared by the api and worker
// binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"grantpilot/internal/config"
	"grantpilot/internal/store"
	"grantpilot/pkg/db"
)

// OpenStore returns the configured document store. The pool is nil for the
// memory driver; callers close it when it is not.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, *pgxpool.Pool, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemory(), nil, nil
	case config.DriverPostgres:
		pool, err := db.NewConnection(cfg.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		logger.Info("Document schema ready")
		return store.NewPostgres(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
