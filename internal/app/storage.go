package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arglo/storefront/internal/config"
	"github.com/arglo/storefront/internal/metrics"
	"github.com/arglo/storefront/internal/storage"
	"github.com/arglo/storefront/pkg/database"
	"github.com/arglo/storefront/pkg/health"
)

const probeTimeout = 5 * time.Second

// storageSetup is the medium chosen at startup.
type storageSetup struct {
	store     storage.Store
	rdb       *redis.Client // nil unless the Redis backend is in use
	available bool
}

// openStorage connects the configured backend and probes it once. When the
// probe fails the process continues on an in-memory medium and available is
// false. It never returns an error.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) storageSetup {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var setup storageSetup
	switch cfg.StorageBackend {
	case config.BackendRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPass,
			DB:           cfg.RedisDB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		})
		if err != nil {
			logger.Warn("redis unavailable, using in-memory storage", slog.String("error", err.Error()))
			return fallbackStorage(logger)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
			slog.String("namespace", cfg.StorageNamespace),
		)
		setup = storageSetup{store: storage.NewRedisStore(rdb, cfg.StorageNamespace, logger), rdb: rdb}
	default:
		setup = storageSetup{store: storage.NewMemoryStore()}
	}

	if !storage.NewPersistent(setup.store, logger).Available(ctx) {
		if setup.rdb != nil {
			_ = setup.rdb.Close()
		}
		return fallbackStorage(logger)
	}
	setup.available = true
	metrics.StorageFallback.Set(0)
	return setup
}

func fallbackStorage(logger *slog.Logger) storageSetup {
	logger.Warn("storage unavailable, state will not survive a restart")
	metrics.StorageFallback.Set(1)
	return storageSetup{store: storage.NewMemoryStore()}
}

// checker reports the storage health: down when Redis stops answering,
// degraded while running on the fallback medium.
func (s storageSetup) checker() health.Checker {
	switch {
	case !s.available:
		return func(context.Context) error {
			return fmt.Errorf("%w: running on in-memory storage", health.ErrDegraded)
		}
	case s.rdb != nil:
		return func(ctx context.Context) error {
			return s.rdb.Ping(ctx).Err()
		}
	default:
		return func(context.Context) error { return nil }
	}
}

func (s storageSetup) close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
