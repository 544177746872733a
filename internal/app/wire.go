// Package app assembles repositories and services for a storage driver.
package app

import (
	"context"
	"time"

	"fishledger/internal/core/id"
	"fishledger/internal/core/numerator"
	"fishledger/internal/core/security"
	"fishledger/internal/core/tx"
	"fishledger/internal/domain/allocation"
	"fishledger/internal/domain/audit"
	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/expense"
	"fishledger/internal/domain/ledger"
	"fishledger/internal/domain/registers/stock"
	"fishledger/internal/domain/render"
	"fishledger/internal/domain/reports"
	"fishledger/internal/infrastructure/storage/memory"
	"fishledger/internal/infrastructure/storage/postgres"
	"fishledger/internal/infrastructure/storage/postgres/document_repo"
	"fishledger/internal/infrastructure/storage/postgres/register_repo"
	"fishledger/internal/infrastructure/storage/postgres/report_repo"
)

// AuditLog records entries and reads them back per entity.
type AuditLog interface {
	audit.Recorder
	History(ctx context.Context, entityID id.ID) ([]audit.Entry, error)
}

// Stores is one storage driver's set of repositories.
type Stores struct {
	TxManager tx.ReadOnlyManager
	Purchases purchase.Repository
	Sales     sale.Repository
	Receipts  receipt.Repository
	Expenses  expense.Repository
	Lots      allocation.LotSource
	Stock     stock.Repository
	Reports   reports.Repository
	Audit     AuditLog
}

// MemoryStores keeps everything in process.
func MemoryStores() Stores {
	store := memory.NewStore()
	return Stores{
		TxManager: store,
		Purchases: memory.NewPurchaseRepo(store),
		Sales:     memory.NewSaleRepo(store),
		Receipts:  memory.NewReceiptRepo(store),
		Expenses:  memory.NewExpenseRepo(store),
		Lots:      memory.NewLotSource(store),
		Stock:     memory.NewStockRepo(store),
		Reports:   memory.NewReportRepo(store),
		Audit:     memory.NewAuditLog(store),
	}
}

// PostgresStores runs every repository on pool.
func PostgresStores(pool *postgres.Pool) (Stores, *postgres.TxManager, error) {
	txm := postgres.NewTxManager(pool)
	auditService, err := postgres.NewAuditService(txm)
	if err != nil {
		return Stores{}, nil, err
	}
	purchases := document_repo.NewPurchaseRepo(txm)
	return Stores{
		TxManager: txm,
		Purchases: purchases,
		Sales:     document_repo.NewSaleRepo(txm),
		Receipts:  document_repo.NewReceiptRepo(txm),
		Expenses:  document_repo.NewExpenseRepo(txm),
		Lots:      purchases,
		Stock:     register_repo.NewStockRepo(txm),
		Reports:   report_repo.NewReportRepo(txm),
		Audit:     auditService,
	}, txm, nil
}

// Options are the optional collaborators of the ledger.
type Options struct {
	Policy   security.Policy
	Metrics  ledger.Metrics
	Renderer render.Renderer
	Notifier render.Notifier
	Clock    func() time.Time
}

// Services are the entry points used by the HTTP adapter.
type Services struct {
	Ledger  *ledger.Service
	Stock   *stock.Service
	Reports *reports.Service
	Audit   AuditLog
}

// NewServices wires services over st with numbers from gen.
func NewServices(st Stores, gen numerator.Generator, opts Options) Services {
	return Services{
		Ledger: ledger.NewService(ledger.Dependencies{
			TxManager: st.TxManager,
			Numerator: gen,
			Purchases: st.Purchases,
			Sales:     st.Sales,
			Receipts:  st.Receipts,
			Expenses:  st.Expenses,
			Lots:      st.Lots,
			Policy:    opts.Policy,
			Audit:     st.Audit,
			Metrics:   opts.Metrics,
			Renderer:  opts.Renderer,
			Notifier:  opts.Notifier,
			Clock:     opts.Clock,
		}),
		Stock:   stock.NewService(st.Stock),
		Reports: reports.NewService(st.Reports, st.TxManager),
		Audit:   st.Audit,
	}
}
