package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/numerator"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/infrastructure/storage/postgres"
)

const receiptsTable = "doc_receipts"

var _ receipt.Repository = (*ReceiptRepo)(nil)

// ReceiptRepo implements receipt.Repository.
// The partial unique index uq_receipts_live_owner keeps one issued receipt per owner.
type ReceiptRepo struct {
	*BaseDocumentRepo[receipt.Receipt]
}

// NewReceiptRepo creates a new receipt repository.
func NewReceiptRepo(txManager *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[receipt.Receipt](txManager, receiptsTable, "receipt"),
	}
}

// Create implements receipt.Repository.
func (r *ReceiptRepo) Create(ctx context.Context, rc *receipt.Receipt) error {
	return r.insert(ctx, rc, string(numerator.DocReceipt), rc.Number)
}

// GetByID implements receipt.Repository.
func (r *ReceiptRepo) GetByID(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	return r.get(ctx, squirrel.Eq{"id": receiptID}, false)
}

// GetForUpdate implements receipt.Repository.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	return r.get(ctx, squirrel.Eq{"id": receiptID}, true)
}

// GetLive implements receipt.Repository.
func (r *ReceiptRepo) GetLive(ctx context.Context, ownerType receipt.OwnerType, ownerID id.ID) (*receipt.Receipt, error) {
	found, err := r.list(ctx, squirrel.Eq{
		"owner_type": string(ownerType),
		"owner_id":   ownerID,
		"status":     string(receipt.StatusIssued),
	}, "issued_at")
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperror.NewNotFound("receipt", ownerID).
			WithDetail("ownerType", string(ownerType))
	}
	return found[0], nil
}

// ListByOwner implements receipt.Repository.
func (r *ReceiptRepo) ListByOwner(ctx context.Context, ownerType receipt.OwnerType, ownerID id.ID) ([]*receipt.Receipt, error) {
	return r.list(ctx, squirrel.Eq{
		"owner_type": string(ownerType),
		"owner_id":   ownerID,
	}, "issued_at", "id")
}

// Update implements receipt.Repository. rc.Version is the already-bumped
// version, so the stored row must still hold the previous one.
func (r *ReceiptRepo) Update(ctx context.Context, rc *receipt.Receipt) error {
	sql, args, err := builder.
		Update(receiptsTable).
		Set("status", string(rc.Status)).
		Set("superseded_by", rc.SupersededBy).
		Set("voided_at", rc.VoidedAt).
		Set("version", rc.Version).
		Where(squirrel.Eq{"id": rc.ID, "version": rc.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update receipt: %w", err), string(numerator.DocReceipt), rc.Number)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("receipt", rc.ID)
	}
	return nil
}
