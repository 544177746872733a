package ledger

import (
	"context"
	"fmt"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/security"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/render"
	"fishledger/pkg/logger"
)

// SendDocument hands a sale or purchase (with its live receipt, if any) to the
// notifier. The document is rendered only if the notifier reads the attachment.
func (s *Service) SendDocument(ctx context.Context, caller Caller, ownerType receipt.OwnerType, ownerID id.ID, recipient string) error {
	if err := s.authorize(ctx, caller, security.PermSendDocument); err != nil {
		return err
	}
	if s.renderer == nil || s.notifier == nil {
		return apperror.NewInternal(fmt.Errorf("document delivery is not configured"))
	}
	if recipient == "" {
		return apperror.NewValidation("recipient is required").
			WithDetail("field", "recipient")
	}

	doc := render.Document{Kind: ownerType}
	switch ownerType {
	case receipt.OwnerSale:
		sl, err := s.sales.GetByID(ctx, ownerID)
		if err != nil {
			return err
		}
		doc.Sale = sl
	case receipt.OwnerPurchase:
		lot, err := s.purchases.GetByID(ctx, ownerID)
		if err != nil {
			return err
		}
		doc.Purchase = lot
	default:
		return apperror.NewValidation("unknown document type").
			WithDetail("ownerType", string(ownerType))
	}

	live, err := s.receipts.GetLive(ctx, ownerType, ownerID)
	switch {
	case err == nil:
		doc.Receipt = live
	case !apperror.IsNotFound(err):
		return fmt.Errorf("get live receipt: %w", err)
	}

	attachment := render.Lazy(s.renderer, doc)
	if err := s.notifier.Send(ctx, recipient, attachment); err != nil {
		logger.Warn(ctx, "document delivery failed", "document", attachment.Name, "error", err)
		return fmt.Errorf("send %s: %w", attachment.Name, err)
	}

	logger.Info(ctx, "document sent", "document", attachment.Name, "owner_id", ownerID)
	return nil
}

func logInfo(ctx context.Context, msg string, r *receipt.Receipt) {
	logger.Info(ctx, msg,
		"id", r.ID,
		"number", r.Number,
		"owner_type", r.OwnerType,
		"owner_id", r.OwnerID)
}
