package reports

import (
	"context"

	"fishledger/internal/core/types"
)

// Repository defines report data access interface.
type Repository interface {
	// SaleFacts returns sales dated within the period, oldest first.
	SaleFacts(ctx context.Context, period Period) ([]SaleFact, error)

	// ExpenseTotal sums expenses dated within the period.
	ExpenseTotal(ctx context.Context, period Period) (types.Money, error)
}
