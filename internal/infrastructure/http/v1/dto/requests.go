// Package dto provides the request and response bodies of the HTTP API.
package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/ledger"
	"fishledger/internal/domain/reports"
)

// DateLayout is the calendar date format accepted in query strings.
const DateLayout = "2006-01-02"

func parseID(field, raw string) (id.ID, error) {
	parsed, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid id").WithDetail("field", field)
	}
	return parsed, nil
}

// CreatePurchaseRequest records a purchase lot.
type CreatePurchaseRequest struct {
	SupplierID   string          `json:"supplierId" binding:"required,uuid"`
	PurchaseDate time.Time       `json:"purchaseDate"`
	QuantityKg   decimal.Decimal `json:"quantityKg"`
	PricePerKg   decimal.Decimal `json:"pricePerKg"`
	Notes        string          `json:"notes"`
}

// ToInput converts the request to ledger input.
func (r CreatePurchaseRequest) ToInput() (ledger.PurchaseInput, error) {
	supplierID, err := parseID("supplierId", r.SupplierID)
	if err != nil {
		return ledger.PurchaseInput{}, err
	}
	return ledger.PurchaseInput{
		SupplierID:   supplierID,
		PurchaseDate: r.PurchaseDate,
		QuantityKg:   r.QuantityKg,
		PricePerKg:   r.PricePerKg,
		Notes:        r.Notes,
	}, nil
}

// CreateSaleRequest records a sale. Lots are allocated by the ledger.
type CreateSaleRequest struct {
	CustomerID         string          `json:"customerId" binding:"required,uuid"`
	SaleDate           time.Time       `json:"saleDate"`
	QuantityKg         decimal.Decimal `json:"quantityKg"`
	PricePerKg         decimal.Decimal `json:"pricePerKg"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DeliveryFee        decimal.Decimal `json:"deliveryFee"`
	IsCredit           bool            `json:"isCredit"`
	Notes              string          `json:"notes"`
}

// ToTerms converts the request to sale terms.
func (r CreateSaleRequest) ToTerms() (sale.Terms, error) {
	customerID, err := parseID("customerId", r.CustomerID)
	if err != nil {
		return sale.Terms{}, err
	}
	return sale.Terms{
		CustomerID:         customerID,
		SaleDate:           r.SaleDate,
		QuantityKg:         r.QuantityKg,
		PricePerKg:         r.PricePerKg,
		DiscountPercentage: r.DiscountPercentage,
		DeliveryFee:        r.DeliveryFee,
		IsCredit:           r.IsCredit,
		Notes:              r.Notes,
	}, nil
}

// RecordPaymentRequest records money received against a sale.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"paymentDate"`
	Notes       string          `json:"notes"`
}

// ToInput converts the request to ledger input.
func (r RecordPaymentRequest) ToInput() ledger.PaymentInput {
	return ledger.PaymentInput{
		Amount:      r.Amount,
		PaymentDate: r.PaymentDate,
		Notes:       r.Notes,
	}
}

// CreateExpenseRequest records an operating cost.
type CreateExpenseRequest struct {
	PurchaseID  string          `json:"purchaseId" binding:"omitempty,uuid"`
	Type        string          `json:"type" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expenseDate"`
	Notes       string          `json:"notes"`
}

// ToInput converts the request to ledger input.
func (r CreateExpenseRequest) ToInput() (ledger.ExpenseInput, error) {
	in := ledger.ExpenseInput{
		Type:        r.Type,
		Amount:      r.Amount,
		ExpenseDate: r.ExpenseDate,
		Notes:       r.Notes,
	}
	if r.PurchaseID != "" {
		purchaseID, err := parseID("purchaseId", r.PurchaseID)
		if err != nil {
			return ledger.ExpenseInput{}, err
		}
		in.PurchaseID = &purchaseID
	}
	return in, nil
}

// SendDocumentRequest names who receives the rendered document.
type SendDocumentRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

// PeriodQuery is the half-open report interval [from, to).
type PeriodQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// ToPeriod parses both bounds as dates or RFC 3339 timestamps.
func (q PeriodQuery) ToPeriod() (reports.Period, error) {
	from, err := parseTime("from", q.From)
	if err != nil {
		return reports.Period{}, err
	}
	to, err := parseTime("to", q.To)
	if err != nil {
		return reports.Period{}, err
	}
	return reports.Period{From: from, To: to}, nil
}

func parseTime(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return t.UTC(), nil
}
