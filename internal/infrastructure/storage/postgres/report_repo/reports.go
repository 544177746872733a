// Package report_repo provides PostgreSQL queries behind the margin report.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fishledger/internal/core/types"
	"fishledger/internal/domain/reports"
	"fishledger/internal/infrastructure/storage/postgres"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) saleFactsQuery(period reports.Period) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"s.id", "s.invoice_number", "s.doc_date", "s.quantity_kg", "s.total_amount", "s.is_credit",
			"COALESCE((SELECT SUM(p.amount) FROM doc_sale_payments p WHERE p.sale_id = s.id), 0) AS paid",
			`COALESCE((SELECT SUM(i.quantity_kg * l.price_per_kg)
				FROM doc_sale_items i JOIN doc_purchase_lots l ON l.id = i.purchase_id
				WHERE i.sale_id = s.id), 0) AS cost_of_goods`,
			"(SELECT COUNT(*) FROM doc_receipts rc WHERE rc.owner_type = 'sale' AND rc.owner_id = s.id AND rc.status = 'issued') AS live_receipts",
			"(SELECT COUNT(*) FROM doc_receipts rc WHERE rc.owner_type = 'sale' AND rc.owner_id = s.id AND rc.status = 'voided') AS voided_receipts",
		).
		From("doc_sales s").
		Where(squirrel.GtOrEq{"s.doc_date": period.From}).
		Where(squirrel.Lt{"s.doc_date": period.To}).
		OrderBy("s.doc_date", "s.id")
}

// SaleFacts implements reports.Repository.
func (r *ReportRepo) SaleFacts(ctx context.Context, period reports.Period) ([]reports.SaleFact, error) {
	sql, args, err := r.saleFactsQuery(period).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var facts []reports.SaleFact
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &facts, sql, args...); err != nil {
		return nil, fmt.Errorf("sale facts: %w", err)
	}
	return facts, nil
}

func (r *ReportRepo) expenseTotalQuery(period reports.Period) squirrel.SelectBuilder {
	return r.builder.
		Select("COALESCE(SUM(amount), 0)").
		From("doc_expenses").
		Where(squirrel.GtOrEq{"expense_date": period.From}).
		Where(squirrel.Lt{"expense_date": period.To})
}

// ExpenseTotal implements reports.Repository.
func (r *ReportRepo) ExpenseTotal(ctx context.Context, period reports.Period) (types.Money, error) {
	total := types.Zero()
	sql, args, err := r.expenseTotalQuery(period).ToSql()
	if err != nil {
		return total, fmt.Errorf("build query: %w", err)
	}
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return total, fmt.Errorf("expense total: %w", err)
	}
	return total, nil
}
