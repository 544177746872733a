package ledger

import (
	"context"
	"fmt"
	"time"

	"fishledger/internal/core/id"
	"fishledger/internal/core/numerator"
	"fishledger/internal/core/security"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/audit"
	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/domain/expense"
	"fishledger/pkg/logger"
)

// PurchaseInput describes a delivery from a supplier.
type PurchaseInput struct {
	SupplierID   id.ID
	PurchaseDate time.Time
	QuantityKg   types.Kilograms
	PricePerKg   types.Money
	Notes        string
}

// RecordPurchase adds a purchase lot and assigns its invoice number.
func (s *Service) RecordPurchase(ctx context.Context, caller Caller, in PurchaseInput) (*purchase.Lot, error) {
	if err := s.authorize(ctx, caller, security.PermRecordPurchase); err != nil {
		return nil, err
	}

	lot := purchase.NewLot(in.SupplierID, in.PurchaseDate, in.QuantityKg, in.PricePerKg)
	lot.Notes = in.Notes
	if err := lot.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.Next(ctx, numerator.DocPurchaseInvoice, lot.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		if err := lot.AssignNumber(number); err != nil {
			return err
		}

		if err := s.purchases.Create(ctx, lot); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}

		return s.record(ctx, caller, audit.Entry{
			EntityType: "purchase",
			EntityID:   lot.ID,
			Action:     audit.ActionCreate,
			Changes: map[string]any{
				"invoiceNumber": lot.Number,
				"quantityKg":    lot.QuantityKg,
				"pricePerKg":    lot.PricePerKg,
			},
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "record purchase", err)
	}

	logger.Info(ctx, "purchase recorded",
		"id", lot.ID,
		"number", lot.Number,
		"quantity_kg", lot.QuantityKg)

	return lot, nil
}

// GetPurchase retrieves a purchase lot.
func (s *Service) GetPurchase(ctx context.Context, lotID id.ID) (*purchase.Lot, error) {
	return s.purchases.GetByID(ctx, lotID)
}

// ExpenseInput describes an operating cost.
type ExpenseInput struct {
	PurchaseID  *id.ID
	Type        string
	Amount      types.Money
	ExpenseDate time.Time
	Notes       string
}

// RecordExpense stores an expense, optionally attributed to a purchase lot.
func (s *Service) RecordExpense(ctx context.Context, caller Caller, in ExpenseInput) (*expense.Expense, error) {
	if err := s.authorize(ctx, caller, security.PermRecordExpense); err != nil {
		return nil, err
	}

	e := expense.New(in.Type, in.Amount, in.ExpenseDate)
	e.PurchaseID = in.PurchaseID
	e.Notes = in.Notes
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if e.PurchaseID != nil {
			if _, err := s.purchases.GetByID(ctx, *e.PurchaseID); err != nil {
				return err
			}
		}

		if err := s.expenses.Create(ctx, e); err != nil {
			return fmt.Errorf("create expense: %w", err)
		}

		return s.record(ctx, caller, audit.Entry{
			EntityType: "expense",
			EntityID:   e.ID,
			Action:     audit.ActionCreate,
			Changes:    map[string]any{"type": e.Type, "amount": e.Amount},
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "record expense", err)
	}

	logger.Info(ctx, "expense recorded", "id", e.ID, "type", e.Type, "amount", e.Amount)
	return e, nil
}
