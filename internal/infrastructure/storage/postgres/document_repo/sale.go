package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/numerator"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/infrastructure/storage/postgres"
)

const (
	salesTable        = "doc_sales"
	salePaymentsTable = "doc_sale_payments"
)

var _ sale.Repository = (*SaleRepo)(nil)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[sale.Sale]
	batch          *postgres.BatchInserter
	itemColumns    []string
	paymentColumns []string
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[sale.Sale](txManager, salesTable, "sale"),
		batch:            postgres.NewBatchInserter(txManager),
		itemColumns:      postgres.ExtractDBColumns[sale.Item](),
		paymentColumns:   postgres.ExtractDBColumns[sale.Payment](),
	}
}

// Create implements sale.Repository. Items are copied in the same transaction.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	if !r.txManager.InTx(ctx) {
		return apperror.NewInternal(fmt.Errorf("create sale outside transaction"))
	}
	if err := r.insert(ctx, s, string(numerator.DocSaleInvoice), s.Number); err != nil {
		return err
	}
	if _, err := postgres.CopyStructs(ctx, r.batch, saleItemsTable, r.itemColumns, s.Items); err != nil {
		return postgres.MapConstraintError(err)
	}
	return nil
}

// GetByID implements sale.Repository.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.load(ctx, saleID, false)
}

// GetForUpdate implements sale.Repository.
func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.load(ctx, saleID, true)
}

func (r *SaleRepo) load(ctx context.Context, saleID id.ID, forUpdate bool) (*sale.Sale, error) {
	s, err := r.get(ctx, squirrel.Eq{"id": saleID}, forUpdate)
	if err != nil {
		return nil, err
	}

	s.Items = make([]sale.Item, 0)
	if err := r.selectChildren(ctx, &s.Items, saleItemsTable, r.itemColumns, saleID, "line_no"); err != nil {
		return nil, err
	}
	s.Payments = make([]sale.Payment, 0)
	if err := r.selectChildren(ctx, &s.Payments, salePaymentsTable, r.paymentColumns, saleID, "payment_date", "created_at", "id"); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) selectChildren(ctx context.Context, dst any, table string, cols []string, saleID id.ID, orderBy ...string) error {
	sql, args, err := builder.
		Select(cols...).
		From(table).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy(orderBy...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

// AddPayment implements sale.Repository.
func (r *SaleRepo) AddPayment(ctx context.Context, p *sale.Payment) error {
	sql, args, err := builder.
		Insert(salePaymentsTable).
		Columns(r.paymentColumns...).
		Values(postgres.ValuesFor(p, r.paymentColumns)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapConstraintError(fmt.Errorf("insert payment: %w", err))
	}
	return nil
}

// Delete implements sale.Repository. Items and payments go with the row
// through ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	sql, args, err := builder.
		Delete(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapConstraintError(fmt.Errorf("delete sale: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID)
	}
	return nil
}
