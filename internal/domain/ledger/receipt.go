package ledger

import (
	"context"
	"fmt"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/numerator"
	"fishledger/internal/core/security"
	"fishledger/internal/domain/audit"
	"fishledger/internal/domain/documents/receipt"
)

// lockOwner locks the sale or purchase a receipt belongs to.
// Receipt operations always lock the owner before the receipt row.
func (s *Service) lockOwner(ctx context.Context, ownerType receipt.OwnerType, ownerID id.ID) error {
	switch ownerType {
	case receipt.OwnerSale:
		_, err := s.sales.GetForUpdate(ctx, ownerID)
		return err
	case receipt.OwnerPurchase:
		_, err := s.purchases.GetForUpdate(ctx, ownerID)
		return err
	default:
		return apperror.NewValidation("unknown receipt owner type").
			WithDetail("ownerType", string(ownerType))
	}
}

// mirrorNumber keeps the purchase lot's receipt number in step with its live receipt.
func (s *Service) mirrorNumber(ctx context.Context, r *receipt.Receipt, number *string) error {
	if r.OwnerType != receipt.OwnerPurchase {
		return nil
	}
	if err := s.purchases.SetReceiptNumber(ctx, r.OwnerID, number); err != nil {
		return fmt.Errorf("set purchase receipt number: %w", err)
	}
	return nil
}

// IssueReceipt issues a receipt for a sale or purchase.
// If the owner already has an issued receipt, that receipt is returned and no number is generated.
func (s *Service) IssueReceipt(ctx context.Context, caller Caller, ownerType receipt.OwnerType, ownerID id.ID) (*receipt.Receipt, error) {
	if err := s.authorize(ctx, caller, security.PermIssueReceipt); err != nil {
		return nil, err
	}
	if !ownerType.Valid() {
		return nil, apperror.NewValidation("unknown receipt owner type").
			WithDetail("ownerType", string(ownerType))
	}

	var (
		issued  *receipt.Receipt
		created bool
	)
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.lockOwner(ctx, ownerType, ownerID); err != nil {
			return err
		}

		live, err := s.receipts.GetLive(ctx, ownerType, ownerID)
		if err == nil {
			issued = live
			return nil
		}
		if !apperror.IsNotFound(err) {
			return fmt.Errorf("get live receipt: %w", err)
		}

		now := s.now()
		number, err := s.numerator.Next(ctx, numerator.DocReceipt, now)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}

		issued = receipt.New(ownerType, ownerID, number, now)
		if err := s.receipts.Create(ctx, issued); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		if err := s.mirrorNumber(ctx, issued, &issued.Number); err != nil {
			return err
		}
		created = true

		return s.record(ctx, caller, audit.Entry{
			EntityType: "receipt",
			EntityID:   issued.ID,
			Action:     audit.ActionIssue,
			Changes: map[string]any{
				"receiptNumber": issued.Number,
				"ownerType":     string(ownerType),
				"ownerId":       ownerID,
			},
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "issue receipt", err)
	}

	if created {
		s.metrics.ReceiptTransition(string(audit.ActionIssue))
		logInfo(ctx, "receipt issued", issued)
	}
	return issued, nil
}

// VoidReceipt retires an issued receipt. The record and its number are kept.
func (s *Service) VoidReceipt(ctx context.Context, caller Caller, receiptID id.ID) (*receipt.Receipt, error) {
	if err := s.authorize(ctx, caller, security.PermVoidReceipt); err != nil {
		return nil, err
	}

	var voided *receipt.Receipt
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.lockReceipt(ctx, receiptID)
		if err != nil {
			return err
		}

		if err := r.Void(s.now()); err != nil {
			return err
		}
		if err := s.receipts.Update(ctx, r); err != nil {
			return fmt.Errorf("update receipt: %w", err)
		}
		if err := s.mirrorNumber(ctx, r, nil); err != nil {
			return err
		}
		voided = r

		return s.record(ctx, caller, audit.Entry{
			EntityType: "receipt",
			EntityID:   r.ID,
			Action:     audit.ActionVoid,
			Changes:    map[string]any{"receiptNumber": r.Number, "status": string(r.Status)},
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "void receipt", err)
	}

	s.metrics.ReceiptTransition(string(audit.ActionVoid))
	logInfo(ctx, "receipt voided", voided)
	return voided, nil
}

// ReissueReceipt replaces an issued receipt with a new one carrying a new number.
// The original becomes reissued and points at its successor. Both writes commit together.
func (s *Service) ReissueReceipt(ctx context.Context, caller Caller, receiptID id.ID) (*receipt.Receipt, error) {
	if err := s.authorize(ctx, caller, security.PermReissueReceipt); err != nil {
		return nil, err
	}

	var successor *receipt.Receipt
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		original, err := s.lockReceipt(ctx, receiptID)
		if err != nil {
			return err
		}

		// Check before drawing a number from the sequence.
		if err := original.Can(receipt.ActionReissue); err != nil {
			return err
		}

		now := s.now()
		number, err := s.numerator.Next(ctx, numerator.DocReceipt, now)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		successor = receipt.New(original.OwnerType, original.OwnerID, number, now)

		if err := original.Reissue(successor.ID, now); err != nil {
			return err
		}
		// The original leaves the issued state first: at most one issued receipt per owner.
		if err := s.receipts.Update(ctx, original); err != nil {
			return fmt.Errorf("update receipt: %w", err)
		}
		if err := s.receipts.Create(ctx, successor); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		if err := s.mirrorNumber(ctx, successor, &successor.Number); err != nil {
			return err
		}

		return s.record(ctx, caller, audit.Entry{
			EntityType: "receipt",
			EntityID:   original.ID,
			Action:     audit.ActionReissue,
			Changes: map[string]any{
				"receiptNumber":   original.Number,
				"successorId":     successor.ID,
				"successorNumber": successor.Number,
			},
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "reissue receipt", err)
	}

	s.metrics.ReceiptTransition(string(audit.ActionReissue))
	logInfo(ctx, "receipt reissued", successor)
	return successor, nil
}

// GetReceipt retrieves a receipt.
func (s *Service) GetReceipt(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	return s.receipts.GetByID(ctx, receiptID)
}

// ListReceipts returns every receipt of a sale or purchase, oldest first,
// voided and reissued ones included.
func (s *Service) ListReceipts(ctx context.Context, ownerType receipt.OwnerType, ownerID id.ID) ([]*receipt.Receipt, error) {
	if !ownerType.Valid() {
		return nil, apperror.NewValidation("unknown document type").
			WithDetail("ownerType", string(ownerType))
	}
	return s.receipts.ListByOwner(ctx, ownerType, ownerID)
}

// lockReceipt locks the receipt's owner and then the receipt itself.
func (s *Service) lockReceipt(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	r, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if err := s.lockOwner(ctx, r.OwnerType, r.OwnerID); err != nil {
		return nil, err
	}
	return s.receipts.GetForUpdate(ctx, receiptID)
}
