// Package reports computes margin figures from sales, lot costs and expenses.
package reports

import (
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

// Period is the half-open interval [From, To).
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Validate checks the period bounds.
func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return apperror.NewValidation("from and to are required")
	}
	if !p.From.Before(p.To) {
		return apperror.NewValidation("from must be before to").
			WithDetail("from", p.From).
			WithDetail("to", p.To)
	}
	return nil
}

// SaleFact is one sale with the figures margin is computed from.
type SaleFact struct {
	SaleID        id.ID           `db:"id"`
	InvoiceNumber string          `db:"invoice_number"`
	SaleDate      time.Time       `db:"doc_date"`
	QuantityKg    types.Kilograms `db:"quantity_kg"`
	TotalAmount   types.Money     `db:"total_amount"`
	IsCredit      bool            `db:"is_credit"`
	Paid          types.Money     `db:"paid"`

	// CostOfGoods is the sum of item quantity times the purchase price of its lot.
	CostOfGoods types.Money `db:"cost_of_goods"`

	LiveReceipts   int `db:"live_receipts"`
	VoidedReceipts int `db:"voided_receipts"`
}

// Recognized reports whether the sale counts as revenue.
// A sale whose receipts were all voided is treated as cancelled.
func (f SaleFact) Recognized() bool {
	return f.LiveReceipts > 0 || f.VoidedReceipts == 0
}

// MarginLine is the margin of one recognized sale.
type MarginLine struct {
	SaleID        id.ID           `json:"saleId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	SaleDate      time.Time       `json:"saleDate"`
	QuantityKg    types.Kilograms `json:"quantityKg"`
	Revenue       types.Money     `json:"revenue"`
	CostOfGoods   types.Money     `json:"costOfGoods"`
	Margin        types.Money     `json:"margin"`
	Outstanding   types.Money     `json:"outstanding"`
}

// MarginReport summarizes profitability over a period.
type MarginReport struct {
	Period Period `json:"period"`

	SalesCount    int `json:"salesCount"`
	ExcludedSales int `json:"excludedSales"`

	QuantityKg     types.Kilograms `json:"quantityKg"`
	Revenue        types.Money     `json:"revenue"`
	CostOfGoods    types.Money     `json:"costOfGoods"`
	GrossMargin    types.Money     `json:"grossMargin"`
	GrossMarginPct types.Money     `json:"grossMarginPct"`
	Expenses       types.Money     `json:"expenses"`
	NetMargin      types.Money     `json:"netMargin"`
	Receivables    types.Money     `json:"receivables"`

	Lines []MarginLine `json:"lines"`
}
