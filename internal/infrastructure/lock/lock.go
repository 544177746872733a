// Package lock serializes process-wide startup work (schema migrations)
// across replicas with a Redis lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"fishledger/pkg/logger"
)

// ErrNotObtained is returned when the lock stays held by another replica.
var ErrNotObtained = errors.New("lock not obtained")

// ReleaseFunc releases an obtained lock.
type ReleaseFunc func(ctx context.Context) error

// ObtainFunc tries to take key for ttl.
type ObtainFunc func(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)

// Guard runs functions while holding a named lock.
type Guard struct {
	obtain ObtainFunc
	ttl    time.Duration
}

// Config controls lock timing.
type Config struct {
	TTL        time.Duration
	RetryEvery time.Duration
	MaxRetries int
}

// DefaultConfig waits up to a minute for a running migration to finish.
func DefaultConfig() Config {
	return Config{
		TTL:        2 * time.Minute,
		RetryEvery: 500 * time.Millisecond,
		MaxRetries: 120,
	}
}

// NewRedisGuard obtains locks from Redis through bsm/redislock.
func NewRedisGuard(rdb redis.UniversalClient, cfg Config) *Guard {
	locker := redislock.New(rdb)
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(cfg.RetryEvery), cfg.MaxRetries),
	}

	return NewGuard(func(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
		l, err := locker.Obtain(ctx, key, ttl, opts)
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrNotObtained
		}
		if err != nil {
			return nil, err
		}
		return l.Release, nil
	}, cfg.TTL)
}

// NewLocalGuard runs functions without coordination (single replica, memory store).
func NewLocalGuard() *Guard {
	return NewGuard(func(context.Context, string, time.Duration) (ReleaseFunc, error) {
		return func(context.Context) error { return nil }, nil
	}, 0)
}

// NewGuard creates a guard over obtain.
func NewGuard(obtain ObtainFunc, ttl time.Duration) *Guard {
	return &Guard{obtain: obtain, ttl: ttl}
}

// Do runs fn while holding key. A release failure is logged, not returned:
// the lock expires on its own after the TTL.
func (g *Guard) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	release, err := g.obtain(ctx, key, g.ttl)
	if err != nil {
		return fmt.Errorf("obtain lock %s: %w", key, err)
	}
	defer func() {
		if err := release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.Warn(ctx, "release lock failed", "key", key, "error", err)
		}
	}()

	return fn(ctx)
}
