// Package register_repo provides the PostgreSQL stock register.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fishledger/internal/domain/registers/stock"
	"fishledger/internal/infrastructure/storage/postgres"
)

var _ stock.Repository = (*StockRepo)(nil)

// StockRepo implements stock.Repository.
// Stock is never stored: it is derived from lots, sales and sale items on read.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StockRepo) totalsQuery() squirrel.SelectBuilder {
	return r.builder.Select(
		"(SELECT COALESCE(SUM(quantity_kg), 0) FROM doc_purchase_lots) AS purchased_kg",
		"(SELECT COALESCE(SUM(quantity_kg), 0) FROM doc_sales) AS sold_kg",
		"(SELECT COALESCE(SUM(quantity_kg), 0) FROM doc_sale_items) AS allocated_kg",
	)
}

// Totals implements stock.Repository.
func (r *StockRepo) Totals(ctx context.Context) (stock.Totals, error) {
	var t stock.Totals
	sql, args, err := r.totalsQuery().ToSql()
	if err != nil {
		return t, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &t, sql, args...); err != nil {
		return t, fmt.Errorf("stock totals: %w", err)
	}
	return t, nil
}

func (r *StockRepo) lotBalancesQuery() squirrel.SelectBuilder {
	return r.builder.
		Select(
			"l.id", "l.invoice_number", "l.doc_date", "l.quantity_kg", "l.price_per_kg",
			"COALESCE(SUM(i.quantity_kg), 0) AS allocated_kg",
		).
		From("doc_purchase_lots l").
		LeftJoin("doc_sale_items i ON i.purchase_id = l.id").
		GroupBy("l.id").
		OrderBy("l.doc_date", "l.id")
}

// LotBalances implements stock.Repository.
func (r *StockRepo) LotBalances(ctx context.Context) ([]stock.LotBalance, error) {
	sql, args, err := r.lotBalancesQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []stock.LotBalance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("lot balances: %w", err)
	}
	return out, nil
}
