package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter writes child rows (sale items) with the COPY protocol.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyStructs copies every element of rows into table, reading the listed
// columns from their db tags. It must run inside a transaction so the rows
// commit or roll back with their parent.
func CopyStructs[T any](ctx context.Context, b *BatchInserter, table string, columns []string, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return 0, fmt.Errorf("copy into %s requires transaction context", table)
	}

	values := make([][]any, len(rows))
	for i := range rows {
		values[i] = ValuesFor(&rows[i], columns)
	}

	n, err := t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(values))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}
