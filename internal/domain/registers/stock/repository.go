// Package stock provides the stock register: how many kilograms are on hand.
package stock

import (
	"context"
	"time"

	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

// Totals are the aggregate quantities stock is derived from.
type Totals struct {
	PurchasedKg types.Kilograms `db:"purchased_kg"`
	SoldKg      types.Kilograms `db:"sold_kg"`
	AllocatedKg types.Kilograms `db:"allocated_kg"`
}

// LotBalance is the position of one purchase lot.
type LotBalance struct {
	PurchaseID    id.ID           `db:"id" json:"purchaseId"`
	InvoiceNumber string          `db:"invoice_number" json:"invoiceNumber"`
	PurchaseDate  time.Time       `db:"doc_date" json:"purchaseDate"`
	QuantityKg    types.Kilograms `db:"quantity_kg" json:"quantityKg"`
	AllocatedKg   types.Kilograms `db:"allocated_kg" json:"allocatedKg"`
	PricePerKg    types.Money     `db:"price_per_kg" json:"pricePerKg"`
}

// RemainingKg is the capacity not yet attributed to sales.
func (b LotBalance) RemainingKg() types.Kilograms {
	return b.QuantityKg.Sub(b.AllocatedKg)
}

// RemainingValue values the remaining capacity at purchase cost.
func (b LotBalance) RemainingValue() types.Money {
	return b.RemainingKg().Mul(b.PricePerKg)
}

// Repository reads stock aggregates. All reads are lock-free.
type Repository interface {
	// Totals sums lot quantities, sale quantities and sale item quantities.
	Totals(ctx context.Context) (Totals, error)

	// LotBalances returns every lot with its allocated quantity, oldest first.
	LotBalances(ctx context.Context) ([]LotBalance, error)
}
