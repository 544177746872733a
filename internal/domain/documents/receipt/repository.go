package receipt

import (
	"context"

	"fishledger/internal/core/id"
)

// Repository defines persistence for receipts.
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	GetByID(ctx context.Context, receiptID id.ID) (*Receipt, error)

	// GetForUpdate locks the receipt row until the transaction ends.
	GetForUpdate(ctx context.Context, receiptID id.ID) (*Receipt, error)

	// GetLive returns the issued receipt of an owner or a NOT_FOUND error.
	GetLive(ctx context.Context, ownerType OwnerType, ownerID id.ID) (*Receipt, error)

	// ListByOwner returns every receipt of an owner, oldest first.
	ListByOwner(ctx context.Context, ownerType OwnerType, ownerID id.ID) ([]*Receipt, error)

	// Update persists a state transition (optimistic locking on version).
	Update(ctx context.Context, r *Receipt) error
}
