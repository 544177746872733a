// Package purchase provides the purchase lot document: one delivery of fish from a supplier.
package purchase

import (
	"context"
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/entity"
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

// Lot is a purchase of fish from a supplier.
// QuantityKg is the original lot size and never changes; what is left of the
// lot is derived from the sale items referencing it. Lots are never deleted.
type Lot struct {
	entity.Document

	SupplierID id.ID           `db:"supplier_id" json:"supplierId"`
	QuantityKg types.Kilograms `db:"quantity_kg" json:"quantityKg"`
	PricePerKg types.Money     `db:"price_per_kg" json:"pricePerKg"`

	// ReceiptNumber mirrors the live receipt issued for the lot, if any.
	ReceiptNumber *string `db:"receipt_number" json:"receiptNumber,omitempty"`
}

// NewLot creates a purchase lot dated purchaseDate.
func NewLot(supplierID id.ID, purchaseDate time.Time, quantityKg types.Kilograms, pricePerKg types.Money) *Lot {
	return &Lot{
		Document:   entity.NewDocument(purchaseDate),
		SupplierID: supplierID,
		QuantityKg: quantityKg,
		PricePerKg: pricePerKg,
	}
}

// TotalCost is quantity times price. It is always computed, never stored.
func (l *Lot) TotalCost() types.Money {
	return l.QuantityKg.Mul(l.PricePerKg)
}

// Validate implements entity.Validatable.
func (l *Lot) Validate(ctx context.Context) error {
	if err := l.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(l.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if !l.QuantityKg.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantityKg")
	}

	if l.PricePerKg.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "pricePerKg")
	}

	return nil
}
