package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/dashboard-session/internal/config"
	"github.com/spec-kit/dashboard-session/internal/store"
)

// OpenStore builds the configured store backend. The returned close function
// releases any connection it opened and is always non-nil.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		rdb := NewRedis(ctx, cfg.Redis, logger)
		logger.Info("using redis store", zap.String("namespace", cfg.Store.Namespace))
		return store.NewRedis(rdb.Client, cfg.Store.Namespace), rdb.Close, nil

	case config.StorePostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open postgres store: %w", err)
		}
		if pg.PoolHandle() == nil {
			return nil, func() {}, errors.New("postgres store selected but POSTGRES_DSN is empty")
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, func() {}, err
			}
		}
		logger.Info("using postgres store", zap.String("namespace", cfg.Store.Namespace))
		return store.NewPostgres(pg.PoolHandle(), cfg.Store.Namespace), pg.Close, nil

	default:
		logger.Info("using in-memory store")
		return store.NewMemory(nil), func() {}, nil
	}
}
