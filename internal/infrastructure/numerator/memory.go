package numerator

import (
	"context"
	"sync"
	"time"

	corenumerator "fishledger/internal/core/numerator"
)

// MemoryCounter keeps counters in process memory.
// Used with the in-memory store and in tests.
type MemoryCounter struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryCounter creates an empty MemoryCounter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counters: make(map[string]int64)}
}

// Increment implements Counter.
func (c *MemoryCounter) Increment(_ context.Context, cfg corenumerator.Config, period time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cfg.Key(period)
	c.counters[key]++
	return c.counters[key], nil
}

// Set moves the counter of key so the next number is value+1.
// Used when importing existing documents.
func (c *MemoryCounter) Set(cfg corenumerator.Config, period time.Time, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[cfg.Key(period)] = value
}
