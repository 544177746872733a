// Package allocation attributes a requested sale quantity to purchase lots, oldest first.
package allocation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

// OpenLot is a purchase lot with capacity left.
type OpenLot struct {
	PurchaseID   id.ID           `db:"id"`
	PurchaseDate time.Time       `db:"doc_date"`
	RemainingKg  types.Kilograms `db:"remaining_kg"`
}

// Draft is one planned sale item.
type Draft struct {
	PurchaseID id.ID
	QuantityKg types.Kilograms
	PricePerKg types.Money
	TotalPrice types.Money
}

// LotSource reads open lots under a write lock.
type LotSource interface {
	// LockOpenLots locks every lot with remaining capacity and returns them.
	// Locks are held until the surrounding transaction ends, so two concurrent
	// allocations never see the same capacity.
	LockOpenLots(ctx context.Context) ([]OpenLot, error)
}

// Allocator plans sale items against locked lots.
// Allocate must run inside the transaction that persists the resulting items.
type Allocator struct {
	source LotSource
}

// NewAllocator creates an allocator reading lots from source.
func NewAllocator(source LotSource) *Allocator {
	return &Allocator{source: source}
}

// Allocate locks open lots and plans items covering requestedKg.
func (a *Allocator) Allocate(ctx context.Context, requestedKg types.Kilograms, salePricePerKg types.Money) ([]Draft, error) {
	if !requestedKg.IsPositive() {
		return nil, apperror.NewValidation("requested quantity must be positive").
			WithDetail("field", "quantityKg")
	}
	if salePricePerKg.IsNegative() {
		return nil, apperror.NewValidation("price cannot be negative").
			WithDetail("field", "pricePerKg")
	}

	lots, err := a.source.LockOpenLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock open lots: %w", err)
	}

	return Plan(lots, requestedKg, salePricePerKg)
}

// Plan draws min(remaining, needed) from each lot in (purchase date, id) order.
// It returns INSUFFICIENT_STOCK and no drafts when the lots cannot cover requestedKg.
func Plan(lots []OpenLot, requestedKg types.Kilograms, salePricePerKg types.Money) ([]Draft, error) {
	ordered := make([]OpenLot, 0, len(lots))
	for _, l := range lots {
		if l.RemainingKg.IsPositive() {
			ordered = append(ordered, l)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PurchaseDate.Equal(ordered[j].PurchaseDate) {
			return ordered[i].PurchaseDate.Before(ordered[j].PurchaseDate)
		}
		return id.Compare(ordered[i].PurchaseID, ordered[j].PurchaseID) < 0
	})

	drafts := make([]Draft, 0, 1)
	needed := requestedKg
	for _, l := range ordered {
		if !needed.IsPositive() {
			break
		}
		take := types.Min(l.RemainingKg, needed)
		drafts = append(drafts, Draft{
			PurchaseID: l.PurchaseID,
			QuantityKg: take,
			PricePerKg: salePricePerKg,
			TotalPrice: take.Mul(salePricePerKg),
		})
		needed = needed.Sub(take)
	}

	if needed.IsPositive() {
		return nil, apperror.NewInsufficientStock(requestedKg, requestedKg.Sub(needed))
	}

	return drafts, nil
}
