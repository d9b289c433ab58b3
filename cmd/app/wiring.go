package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/reelfaucet/internal/config"
	"github.com/osse101/reelfaucet/internal/database"
	"github.com/osse101/reelfaucet/internal/kvstore"
	"github.com/osse101/reelfaucet/internal/ledger"
	"github.com/osse101/reelfaucet/internal/slots"
	"github.com/osse101/reelfaucet/internal/spin"
)

// recordStore is the ledger record backend plus its optional capabilities
type recordStore struct {
	kvstore.Store
	pruner kvstore.Pruner
	pinger kvstore.Pinger
	close  func()
}

// openStore connects the configured record backend. Postgres is migrated
// before use.
func openStore(ctx context.Context, cfg *config.Config) (*recordStore, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxIdleTime, cfg.DBMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		store := kvstore.NewPostgresStore(pool)
		return &recordStore{Store: store, pruner: store, pinger: store, close: pool.Close}, nil

	case config.StoreRedis:
		rdb := kvstore.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		store := kvstore.NewRedisStore(rdb, cfg.RedisTTL, ledger.KeyPrefixDemo)
		if err := store.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		// Redis expires demo records by TTL, so there is nothing to prune
		return &recordStore{Store: store, pinger: store, close: func() { _ = rdb.Close() }}, nil

	default:
		store := kvstore.NewMemoryStore()
		return &recordStore{Store: store, pruner: store, close: func() {}}, nil
	}
}

// loadCatalog prefers a catalog file and falls back to the built-in profile
func loadCatalog(cfg *config.Config) (*slots.Catalog, error) {
	if cfg.CatalogPath != "" {
		slog.Info("Loading slot catalog", "path", cfg.CatalogPath)
		return slots.LoadCatalog(cfg.CatalogPath)
	}
	slog.Info("Using built-in slot catalog", "profile", cfg.SlotsProfile)
	return slots.NewProfileCatalog(cfg.SlotsProfile)
}

func poolConfig(cfg *config.Config) (slots.PoolConfig, error) {
	pool := slots.DefaultPoolConfig()
	pool.MinimumEngagementSpins = cfg.PoolMinimumSpins
	return pool, pool.Validate()
}

func timings(cfg *config.Config) spin.Timings {
	return spin.Timings{
		Acceleration:       cfg.SpinAcceleration,
		ReelInterval:       cfg.SpinReelInterval,
		WinPresentation:    cfg.SpinWinPresentation,
		BigWinPresentation: cfg.SpinBigWinPresentation,
	}
}
