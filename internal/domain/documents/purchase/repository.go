package purchase

import (
	"context"

	"fishledger/internal/core/id"
)

// Repository defines persistence for purchase lots.
type Repository interface {
	Create(ctx context.Context, lot *Lot) error
	GetByID(ctx context.Context, lotID id.ID) (*Lot, error)

	// GetForUpdate locks the lot row until the transaction ends.
	GetForUpdate(ctx context.Context, lotID id.ID) (*Lot, error)

	// SetReceiptNumber stores the number of the live receipt (nil clears it).
	SetReceiptNumber(ctx context.Context, lotID id.ID, number *string) error
}
