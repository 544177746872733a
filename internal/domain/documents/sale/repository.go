package sale

import (
	"context"

	"fishledger/internal/core/id"
)

// Repository defines persistence for sales with their items and payments.
type Repository interface {
	// Create inserts the sale and its items.
	Create(ctx context.Context, s *Sale) error

	// GetByID loads the sale with items and payments.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetForUpdate locks the sale row and loads it with items and payments.
	GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)

	AddPayment(ctx context.Context, p *Payment) error

	// Delete removes the sale, cascading to its items and payments.
	Delete(ctx context.Context, saleID id.ID) error
}
