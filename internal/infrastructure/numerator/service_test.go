package numerator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "fishledger/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences upsert: one counter per (prefix, year).
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return &mockRow{err: m.err}
	}
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	key := fmt.Sprintf("%v/%v", args[0], args[1])
	m.counters[key]++
	return &mockRow{val: m.counters[key]}
}

func TestPostgresCounter_SequentialPerTypeAndYear(t *testing.T) {
	q := &mockQuerier{}
	svc := New(NewPostgresCounter(func(context.Context) Querier { return q }))
	ctx := context.Background()
	y2025 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	y2026 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	first, err := svc.Next(ctx, corenumerator.DocSaleInvoice, y2025)
	require.NoError(t, err)
	second, err := svc.Next(ctx, corenumerator.DocSaleInvoice, y2025)
	require.NoError(t, err)
	receipt, err := svc.Next(ctx, corenumerator.DocReceipt, y2025)
	require.NoError(t, err)
	nextYear, err := svc.Next(ctx, corenumerator.DocSaleInvoice, y2026)
	require.NoError(t, err)

	assert.Equal(t, "INV-2025-000001", first)
	assert.Equal(t, "INV-2025-000002", second)
	assert.Equal(t, "RCP-2025-000001", receipt)
	assert.Equal(t, "INV-2026-000001", nextYear)
}

func TestPostgresCounter_PropagatesError(t *testing.T) {
	q := &mockQuerier{err: errors.New("connection reset")}
	svc := New(NewPostgresCounter(func(context.Context) Querier { return q }))

	_, err := svc.Next(context.Background(), corenumerator.DocPurchaseInvoice, time.Now())
	assert.ErrorContains(t, err, "connection reset")
}

type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]int64
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = make(map[string]int64)
	}
	f.keys[key]++
	return redis.NewIntResult(f.keys[key], nil)
}

func TestRedisCounter_Namespace(t *testing.T) {
	rdb := &fakeRedis{}
	svc := New(NewRedisCounter(rdb, ""))
	period := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.Next(context.Background(), corenumerator.DocPurchaseInvoice, period)
	require.NoError(t, err)
	assert.Equal(t, "PUR-2025-000001", num)
	assert.Equal(t, int64(1), rdb.keys["fishledger:seq:PUR_2025"])
}

func TestMemoryCounter_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	svc := New(NewMemoryCounter())
	ctx := context.Background()
	period := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	const workers = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.Next(ctx, corenumerator.DocReceipt, period)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[num] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
	_, ok := seen[fmt.Sprintf("RCP-2025-%06d", workers)]
	assert.True(t, ok)
}

func TestMemoryCounter_Set(t *testing.T) {
	counter := NewMemoryCounter()
	cfg, err := corenumerator.ConfigFor(corenumerator.DocSaleInvoice)
	require.NoError(t, err)
	period := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	counter.Set(cfg, period, 41)

	num, err := New(counter).Next(context.Background(), corenumerator.DocSaleInvoice, period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-000042", num)
}
