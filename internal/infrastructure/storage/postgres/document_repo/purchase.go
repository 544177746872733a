package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/numerator"
	"fishledger/internal/domain/allocation"
	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/infrastructure/storage/postgres"
)

const (
	purchaseLotsTable = "doc_purchase_lots"
	saleItemsTable    = "doc_sale_items"
)

var (
	_ purchase.Repository  = (*PurchaseRepo)(nil)
	_ allocation.LotSource = (*PurchaseRepo)(nil)
)

// PurchaseRepo implements purchase.Repository and allocation.LotSource.
type PurchaseRepo struct {
	*BaseDocumentRepo[purchase.Lot]
}

// NewPurchaseRepo creates a new purchase lot repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[purchase.Lot](txManager, purchaseLotsTable, "purchase"),
	}
}

// Create implements purchase.Repository.
func (r *PurchaseRepo) Create(ctx context.Context, lot *purchase.Lot) error {
	return r.insert(ctx, lot, string(numerator.DocPurchaseInvoice), lot.Number)
}

// GetByID implements purchase.Repository.
func (r *PurchaseRepo) GetByID(ctx context.Context, lotID id.ID) (*purchase.Lot, error) {
	return r.get(ctx, squirrel.Eq{"id": lotID}, false)
}

// GetForUpdate implements purchase.Repository.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, lotID id.ID) (*purchase.Lot, error) {
	return r.get(ctx, squirrel.Eq{"id": lotID}, true)
}

// SetReceiptNumber implements purchase.Repository.
func (r *PurchaseRepo) SetReceiptNumber(ctx context.Context, lotID id.ID, number *string) error {
	sql, args, err := builder.
		Update(purchaseLotsTable).
		Set("receipt_number", number).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": lotID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapConstraintError(fmt.Errorf("set receipt number: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase", lotID)
	}
	return nil
}

// remainingExpr is the unallocated quantity of lot l.
const remainingExpr = "l.quantity_kg - COALESCE((SELECT SUM(i.quantity_kg) FROM " + saleItemsTable +
	" i WHERE i.purchase_id = l.id), 0)"

// lockOpenLotsQuery locks candidate lots in FIFO order. Its snapshot may be
// older than the lock it waited for, so remaining capacity is re-read afterwards.
func lockOpenLotsQuery() squirrel.SelectBuilder {
	return builder.
		Select("l.id").
		From(purchaseLotsTable + " l").
		Where(remainingExpr + " > 0").
		OrderBy("l.doc_date", "l.id").
		Suffix("FOR UPDATE OF l")
}

// openLotsQuery reads remaining capacity of the locked lots.
func openLotsQuery(lotIDs []id.ID) squirrel.SelectBuilder {
	return builder.
		Select("l.id", "l.doc_date", remainingExpr+" AS remaining_kg").
		From(purchaseLotsTable + " l").
		Where(squirrel.Eq{"l.id": lotIDs}).
		OrderBy("l.doc_date", "l.id")
}

// LockOpenLots implements allocation.LotSource.
//
// Under read committed the second statement takes a fresh snapshot, so it
// sees every item committed by allocations that held the locks before us.
func (r *PurchaseRepo) LockOpenLots(ctx context.Context) ([]allocation.OpenLot, error) {
	if !r.txManager.InTx(ctx) {
		return nil, apperror.NewInternal(fmt.Errorf("lock open lots outside transaction"))
	}
	q := r.querier(ctx)

	sql, args, err := lockOpenLotsQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock query: %w", err)
	}
	var lotIDs []id.ID
	if err := pgxscan.Select(ctx, q, &lotIDs, sql, args...); err != nil {
		return nil, fmt.Errorf("lock open lots: %w", err)
	}
	if len(lotIDs) == 0 {
		return nil, nil
	}

	sql, args, err = openLotsQuery(lotIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build open lots query: %w", err)
	}
	var lots []allocation.OpenLot
	if err := pgxscan.Select(ctx, q, &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("read open lots: %w", err)
	}
	return lots, nil
}
