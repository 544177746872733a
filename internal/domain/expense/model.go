// Package expense records operating costs (transport, ice, fees) for margin reporting.
package expense

import (
	"context"
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/entity"
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

// Expense is money spent, optionally attributed to one purchase lot.
type Expense struct {
	entity.BaseEntity

	PurchaseID  *id.ID      `db:"purchase_id" json:"purchaseId,omitempty"`
	Amount      types.Money `db:"amount" json:"amount"`
	Type        string      `db:"expense_type" json:"type"`
	ExpenseDate time.Time   `db:"expense_date" json:"expenseDate"`
	Notes       string      `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// New creates an expense.
func New(expenseType string, amount types.Money, date time.Time) *Expense {
	return &Expense{
		BaseEntity:  entity.NewBaseEntity(),
		Amount:      amount,
		Type:        expenseType,
		ExpenseDate: date,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (e *Expense) Validate(_ context.Context) error {
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	if e.Type == "" {
		return apperror.NewValidation("expense type is required").
			WithDetail("field", "type")
	}
	if e.ExpenseDate.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "expenseDate")
	}
	return nil
}

// Repository defines persistence for expenses.
type Repository interface {
	Create(ctx context.Context, e *Expense) error
}
