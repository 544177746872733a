// Package sale provides the sale document, its lot allocation lines and payments.
package sale

import (
	"context"
	"fmt"
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/entity"
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

// Sale is a sale of fish to a customer.
// Items attribute the sold quantity to purchase lots; Payments settle credit sales.
type Sale struct {
	entity.Document

	CustomerID         id.ID           `db:"customer_id" json:"customerId"`
	QuantityKg         types.Kilograms `db:"quantity_kg" json:"quantityKg"`
	PricePerKg         types.Money     `db:"price_per_kg" json:"pricePerKg"`
	DiscountPercentage types.Money     `db:"discount_percentage" json:"discountPercentage"`
	DeliveryFee        types.Money     `db:"delivery_fee" json:"deliveryFee"`
	Subtotal           types.Money     `db:"subtotal" json:"subtotal"`
	TotalAmount        types.Money     `db:"total_amount" json:"totalAmount"`
	IsCredit           bool            `db:"is_credit" json:"isCredit"`

	Items    []Item    `db:"-" json:"items"`
	Payments []Payment `db:"-" json:"payments"`
}

// Item attributes part of a sale to one purchase lot.
// PurchaseID is a plain reference: lots are never deleted, so no cascade is needed.
type Item struct {
	ID         id.ID           `db:"id" json:"id"`
	SaleID     id.ID           `db:"sale_id" json:"saleId"`
	PurchaseID id.ID           `db:"purchase_id" json:"purchaseId"`
	LineNo     int             `db:"line_no" json:"lineNo"`
	QuantityKg types.Kilograms `db:"quantity_kg" json:"quantityKg"`
	PricePerKg types.Money     `db:"price_per_kg" json:"pricePerKg"`
	TotalPrice types.Money     `db:"total_price" json:"totalPrice"`
}

// Payment is money received against a sale.
type Payment struct {
	ID          id.ID       `db:"id" json:"id"`
	SaleID      id.ID       `db:"sale_id" json:"saleId"`
	Amount      types.Money `db:"amount" json:"amount"`
	PaymentDate time.Time   `db:"payment_date" json:"paymentDate"`
	Notes       string      `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// Terms are the commercial inputs of a sale.
type Terms struct {
	CustomerID         id.ID
	SaleDate           time.Time
	QuantityKg         types.Kilograms
	PricePerKg         types.Money
	DiscountPercentage types.Money
	DeliveryFee        types.Money
	IsCredit           bool
	Notes              string
}

// NewSale creates a sale with computed totals.
func NewSale(terms Terms) (*Sale, error) {
	totals, err := ComputeTotals(terms.QuantityKg, terms.PricePerKg, terms.DiscountPercentage, terms.DeliveryFee)
	if err != nil {
		return nil, err
	}

	s := &Sale{
		Document:           entity.NewDocument(terms.SaleDate),
		CustomerID:         terms.CustomerID,
		QuantityKg:         terms.QuantityKg,
		PricePerKg:         terms.PricePerKg,
		DiscountPercentage: terms.DiscountPercentage,
		DeliveryFee:        terms.DeliveryFee,
		Subtotal:           totals.Subtotal,
		TotalAmount:        totals.Total,
		IsCredit:           terms.IsCredit,
		Items:              make([]Item, 0),
		Payments:           make([]Payment, 0),
	}
	s.Notes = terms.Notes
	return s, nil
}

// IsDelivery is derived from the delivery fee.
func (s *Sale) IsDelivery() bool {
	return s.DeliveryFee.IsPositive()
}

// AddItem appends an allocation line priced at the sale price.
func (s *Sale) AddItem(purchaseID id.ID, quantityKg types.Kilograms) {
	s.Items = append(s.Items, Item{
		ID:         id.New(),
		SaleID:     s.ID,
		PurchaseID: purchaseID,
		LineNo:     len(s.Items) + 1,
		QuantityKg: quantityKg,
		PricePerKg: s.PricePerKg,
		TotalPrice: quantityKg.Mul(s.PricePerKg),
	})
}

// AllocatedKg sums the item quantities.
func (s *Sale) AllocatedKg() types.Kilograms {
	total := types.Zero()
	for _, it := range s.Items {
		total = total.Add(it.QuantityKg)
	}
	return total
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if _, err := ComputeTotals(s.QuantityKg, s.PricePerKg, s.DiscountPercentage, s.DeliveryFee); err != nil {
		return err
	}

	return nil
}

// CheckItems verifies the items fully and exactly cover the sold quantity.
func (s *Sale) CheckItems() error {
	for _, it := range s.Items {
		if !it.QuantityKg.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("item %d: quantity must be positive", it.LineNo))
		}
	}

	if allocated := s.AllocatedKg(); !allocated.Equal(s.QuantityKg) {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "allocated quantity does not match sale quantity").
			WithDetail("quantityKg", s.QuantityKg).
			WithDetail("allocatedKg", allocated)
	}

	return nil
}
