package ledger

import (
	"context"
	"fmt"
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/numerator"
	"fishledger/internal/core/security"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/audit"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/documents/sale"
	"fishledger/pkg/logger"
)

// RecordSale allocates the sold quantity to purchase lots (oldest first),
// assigns the invoice number and stores the sale with its items.
// On INSUFFICIENT_STOCK nothing is written and no number is consumed.
func (s *Service) RecordSale(ctx context.Context, caller Caller, terms sale.Terms) (*sale.Sale, error) {
	if err := s.authorize(ctx, caller, security.PermRecordSale); err != nil {
		return nil, err
	}

	sl, err := sale.NewSale(terms)
	if err != nil {
		return nil, err
	}
	if err := sl.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		drafts, err := s.allocator.Allocate(ctx, sl.QuantityKg, sl.PricePerKg)
		if err != nil {
			return err
		}
		for _, d := range drafts {
			sl.AddItem(d.PurchaseID, d.QuantityKg)
		}
		if err := sl.CheckItems(); err != nil {
			return err
		}

		number, err := s.numerator.Next(ctx, numerator.DocSaleInvoice, sl.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		if err := sl.AssignNumber(number); err != nil {
			return err
		}

		if err := s.sales.Create(ctx, sl); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		return s.record(ctx, caller, audit.Entry{
			EntityType: "sale",
			EntityID:   sl.ID,
			Action:     audit.ActionCreate,
			Changes: map[string]any{
				"invoiceNumber": sl.Number,
				"quantityKg":    sl.QuantityKg,
				"totalAmount":   sl.TotalAmount,
				"items":         len(sl.Items),
			},
		})
	})
	if err != nil {
		if apperror.IsInsufficientStock(err) {
			s.metrics.AllocationRejected()
		}
		return nil, s.fail(ctx, "record sale", err)
	}

	s.metrics.SaleRecorded(sl.QuantityKg)
	logger.Info(ctx, "sale recorded",
		"id", sl.ID,
		"number", sl.Number,
		"quantity_kg", sl.QuantityKg,
		"lots", len(sl.Items))

	return sl, nil
}

// GetSale retrieves a sale with items and payments.
func (s *Service) GetSale(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return s.sales.GetByID(ctx, saleID)
}

// OutstandingBalance is what the customer still owes on a sale.
func (s *Service) OutstandingBalance(ctx context.Context, saleID id.ID) (types.Money, error) {
	sl, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return types.Zero(), err
	}
	return sale.AccountOf(sl).OutstandingBalance(), nil
}

// DeleteSale removes a sale with its items and payments, returning its
// kilograms to the lots. Sales that ever had a receipt are kept for audit.
func (s *Service) DeleteSale(ctx context.Context, caller Caller, saleID id.ID) error {
	if err := s.authorize(ctx, caller, security.PermDeleteSale); err != nil {
		return err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		receipts, err := s.receipts.ListByOwner(ctx, receipt.OwnerSale, saleID)
		if err != nil {
			return fmt.Errorf("list receipts: %w", err)
		}
		if len(receipts) > 0 {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "sale with receipts cannot be deleted").
				WithDetail("saleId", saleID).
				WithDetail("receipts", len(receipts))
		}

		if err := s.sales.Delete(ctx, saleID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}

		return s.record(ctx, caller, audit.Entry{
			EntityType: "sale",
			EntityID:   saleID,
			Action:     audit.ActionDelete,
			Changes:    map[string]any{"invoiceNumber": sl.Number, "quantityKg": sl.QuantityKg},
		})
	})
	if err != nil {
		return s.fail(ctx, "delete sale", err)
	}

	logger.Info(ctx, "sale deleted", "id", saleID)
	return nil
}

// PaymentInput describes money received against a sale.
type PaymentInput struct {
	Amount      types.Money
	PaymentDate time.Time
	Notes       string
}

// PaymentResult is the stored payment and the balance left after it.
type PaymentResult struct {
	Payment     sale.Payment
	Outstanding types.Money
}

// RecordPayment stores a payment unless it would exceed the sale total.
// The sale row is locked so concurrent payments are checked one at a time.
func (s *Service) RecordPayment(ctx context.Context, caller Caller, saleID id.ID, in PaymentInput) (*PaymentResult, error) {
	if err := s.authorize(ctx, caller, security.PermRecordPayment); err != nil {
		return nil, err
	}

	if in.PaymentDate.IsZero() {
		in.PaymentDate = s.now()
	}

	var result PaymentResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		acc := sale.AccountOf(sl)
		if err := acc.Accept(in.Amount); err != nil {
			return err
		}

		p := sale.Payment{
			ID:          id.New(),
			SaleID:      saleID,
			Amount:      in.Amount,
			PaymentDate: in.PaymentDate,
			Notes:       in.Notes,
			CreatedAt:   s.now(),
		}
		if err := s.sales.AddPayment(ctx, &p); err != nil {
			return fmt.Errorf("add payment: %w", err)
		}

		acc.Paid = acc.Paid.Add(p.Amount)
		result = PaymentResult{Payment: p, Outstanding: acc.OutstandingBalance()}

		return s.record(ctx, caller, audit.Entry{
			EntityType: "sale",
			EntityID:   saleID,
			Action:     audit.ActionPayment,
			Changes:    map[string]any{"paymentId": p.ID, "amount": p.Amount},
		})
	})
	if err != nil {
		if apperror.IsOverpayment(err) {
			s.metrics.PaymentRejected()
		}
		return nil, s.fail(ctx, "record payment", err)
	}

	s.metrics.PaymentRecorded(result.Payment.Amount)
	logger.Info(ctx, "payment recorded",
		"sale_id", saleID,
		"amount", result.Payment.Amount,
		"outstanding", result.Outstanding)

	return &result, nil
}
