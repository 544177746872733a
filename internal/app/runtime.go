package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fishledger/internal/config"
	"fishledger/internal/core/numerator"
	"fishledger/internal/core/security"
	"fishledger/internal/infrastructure/export"
	"fishledger/internal/infrastructure/http/v1/handlers"
	"fishledger/internal/infrastructure/lock"
	"fishledger/internal/infrastructure/metrics"
	"fishledger/internal/infrastructure/notify"
	infranum "fishledger/internal/infrastructure/numerator"
	"fishledger/internal/infrastructure/storage/postgres"
	"fishledger/internal/infrastructure/storage/postgres/migrations"
	"fishledger/pkg/logger"
)

const migrateLockKey = "fishledger:migrate"

// Runtime owns the connections opened for one process.
type Runtime struct {
	Config   config.Config
	Stores   Stores
	Services Services

	// Metrics is nil when disabled.
	Metrics *metrics.Recorder

	pool  *postgres.Pool
	redis *redis.Client
}

// Start opens the configured backends and wires the services.
func Start(ctx context.Context, cfg config.Config, log *logger.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg}
	if cfg.Metrics.Enabled {
		rt.Metrics = metrics.New(metrics.DefaultConfig())
	}

	if cfg.Redis.Addr != "" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var txm *postgres.TxManager
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if err := rt.openPostgres(ctx); err != nil {
			rt.Close()
			return nil, err
		}
		stores, m, err := PostgresStores(rt.pool)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("postgres stores: %w", err)
		}
		rt.Stores, txm = stores, m
	default:
		rt.Stores = MemoryStores()
	}

	gen, err := rt.numerator(txm)
	if err != nil {
		rt.Close()
		return nil, err
	}

	opts := Options{
		Policy:   security.PermissionPolicy{},
		Renderer: export.InvoiceRenderer{},
		Notifier: notify.NewLogNotifier(log),
	}
	if rt.Metrics != nil {
		opts.Metrics = rt.Metrics
	}
	rt.Services = NewServices(rt.Stores, gen, opts)

	log.Infow("ledger ready",
		"storage", cfg.Storage.Driver,
		"numbering", cfg.Numbering.Backend,
		"metrics", cfg.Metrics.Enabled)
	return rt, nil
}

func (rt *Runtime) openPostgres(ctx context.Context) error {
	cfg := rt.Config.Postgres
	poolCfg := postgres.DefaultPoolConfig(cfg.DSN)
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MinConns = cfg.MinConns

	if cfg.Migrate {
		if err := rt.guard().Do(ctx, migrateLockKey, func(ctx context.Context) error {
			return migrations.Up(ctx, cfg.DSN)
		}); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	rt.pool = pool

	if rt.Metrics != nil {
		rt.Metrics.WatchPool(func() metrics.PoolStats {
			s := pool.Stats()
			return metrics.PoolStats{Total: s.TotalConns, Acquired: s.AcquiredConns, Idle: s.IdleConns}
		})
	}
	return nil
}

// guard serializes startup work across instances when redis is available.
func (rt *Runtime) guard() *lock.Guard {
	if rt.redis != nil {
		return lock.NewRedisGuard(rt.redis, lock.DefaultConfig())
	}
	return lock.NewLocalGuard()
}

func (rt *Runtime) numerator(txm *postgres.TxManager) (numerator.Generator, error) {
	switch rt.Config.Numbering.Backend {
	case config.NumberingPostgres:
		if txm == nil {
			return nil, fmt.Errorf("postgres numbering requires postgres storage")
		}
		return infranum.New(infranum.NewPostgresCounter(func(ctx context.Context) infranum.Querier {
			return txm.GetQuerier(ctx)
		})), nil
	case config.NumberingRedis:
		if rt.redis == nil {
			return nil, fmt.Errorf("redis numbering requires redis.addr")
		}
		return infranum.New(infranum.NewRedisCounter(rt.redis, "")), nil
	default:
		return infranum.New(infranum.NewMemoryCounter()), nil
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthChecks lists the backends the readiness probe pings.
func (rt *Runtime) HealthChecks() map[string]handlers.Pinger {
	checks := make(map[string]handlers.Pinger)
	if rt.pool != nil {
		checks["database"] = rt.pool
	}
	if rt.redis != nil {
		checks["redis"] = pingFunc(func(ctx context.Context) error {
			return rt.redis.Ping(ctx).Err()
		})
	}
	return checks
}

// Close releases the connections opened by Start.
func (rt *Runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
}
