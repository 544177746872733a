package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	corenumerator "fishledger/internal/core/numerator"
)

// Incrementer is the subset of redis.Cmdable used by RedisCounter.
type Incrementer interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RedisCounter uses INCR, which is atomic across instances.
// INCR is not transactional with the ledger store: a rolled back operation
// leaves a gap but never causes a number to be reused.
type RedisCounter struct {
	client    Incrementer
	namespace string
}

// NewRedisCounter creates a counter storing keys under namespace.
func NewRedisCounter(client Incrementer, namespace string) *RedisCounter {
	if namespace == "" {
		namespace = "fishledger:seq"
	}
	return &RedisCounter{client: client, namespace: namespace}
}

// Increment implements Counter.
func (c *RedisCounter) Increment(ctx context.Context, cfg corenumerator.Config, period time.Time) (int64, error) {
	key := fmt.Sprintf("%s:%s", c.namespace, cfg.Key(period))
	num, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return num, nil
}
