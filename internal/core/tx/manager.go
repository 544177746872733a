// Package tx defines the transaction boundary used by ledger services.
// Domain code depends only on Manager; postgres and in-memory stores implement it.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// Every ledger mutation (allocation, numbering, payment, receipt transition)
// executes inside one RunInTransaction call so a failure leaves no partial writes.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, all writes made through ctx are discarded.
	// Nested calls reuse the transaction already carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only units of work.
// Reports use it to read a consistent snapshot without taking write locks.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
