package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "fishledger/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for ctx: the active transaction if any, else the pool.
type QuerierFunc func(ctx context.Context) Querier

// PostgresCounter increments sys_sequences rows with UPSERT + RETURNING.
//
// Called inside the ledger transaction, the row lock taken by the upsert
// serializes concurrent callers until commit, and a rollback undoes the
// increment so a failed operation never leaves a gap.
type PostgresCounter struct {
	querier QuerierFunc
}

// NewPostgresCounter creates a counter resolving its querier through fn.
func NewPostgresCounter(fn QuerierFunc) *PostgresCounter {
	return &PostgresCounter{querier: fn}
}

// Increment implements Counter.
func (c *PostgresCounter) Increment(ctx context.Context, cfg corenumerator.Config, period time.Time) (int64, error) {
	var num int64
	err := c.querier(ctx).QueryRow(ctx, `
        INSERT INTO sys_sequences (sequence_type, year, current_val)
        VALUES ($1, $2, 1)
        ON CONFLICT (sequence_type, year) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, cfg.Prefix, period.Year()).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return num, nil
}
