//go:build integration

package app_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishledger/internal/app"
	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/security"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/ledger"
	infranum "fishledger/internal/infrastructure/numerator"
	"fishledger/internal/infrastructure/storage/postgres"
	"fishledger/internal/infrastructure/storage/postgres/migrations"
)

// Run with: FISHLEDGER_TEST_POSTGRES_DSN=postgres://... go test -tags integration ./internal/app/
// The database is truncated, so point it at a disposable one.
func postgresServices(t *testing.T) app.Services {
	t.Helper()
	dsn := os.Getenv("FISHLEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FISHLEDGER_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	require.NoError(t, migrations.Up(ctx, dsn))
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE sys_audit, doc_expenses, doc_receipts, doc_sale_payments,
		doc_sale_items, doc_sales, doc_purchase_lots, sys_sequences`)
	require.NoError(t, err)

	stores, txm, err := app.PostgresStores(pool)
	require.NoError(t, err)
	gen := infranum.New(infranum.NewPostgresCounter(func(ctx context.Context) infranum.Querier {
		return txm.GetQuerier(ctx)
	}))
	return app.NewServices(stores, gen, app.Options{})
}

func TestPostgres_ConcurrentSalesNeverOversellLot(t *testing.T) {
	services := postgresServices(t)
	ctx := context.Background()
	caller := security.NewCaller(id.New(), security.PermAll)
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := services.Ledger.RecordPurchase(ctx, caller, ledger.PurchaseInput{
		SupplierID:   id.New(),
		PurchaseDate: day,
		QuantityKg:   types.MustDecimal("100"),
		PricePerKg:   types.MustDecimal("5"),
	})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
		rejected atomic.Int64
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := services.Ledger.RecordSale(ctx, caller, sale.Terms{
				CustomerID: id.New(),
				SaleDate:   day,
				QuantityKg: types.MustDecimal("15"),
				PricePerKg: types.MustDecimal("8"),
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case apperror.IsInsufficientStock(err):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(6), accepted.Load())
	assert.Equal(t, int64(4), rejected.Load())

	current, err := services.Stock.Current(ctx)
	require.NoError(t, err)
	assert.True(t, current.Equal(types.MustDecimal("10")), "got %s", current)

	rec, err := services.Stock.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
}

func TestPostgres_ReissueAndFullPrecision(t *testing.T) {
	services := postgresServices(t)
	ctx := context.Background()
	caller := security.NewCaller(id.New(), security.PermAll)
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := services.Ledger.RecordPurchase(ctx, caller, ledger.PurchaseInput{
		SupplierID:   id.New(),
		PurchaseDate: day,
		QuantityKg:   types.MustDecimal("10"),
		PricePerKg:   types.MustDecimal("2"),
	})
	require.NoError(t, err)

	s, err := services.Ledger.RecordSale(ctx, caller, sale.Terms{
		CustomerID:         id.New(),
		SaleDate:           day,
		QuantityKg:         types.MustDecimal("1.5"),
		PricePerKg:         types.MustDecimal("3.33333"),
		DiscountPercentage: types.MustDecimal("12.5"),
	})
	require.NoError(t, err)

	stored, err := services.Ledger.GetSale(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "4.374995625", stored.Subtotal.String())

	original, err := services.Ledger.IssueReceipt(ctx, caller, receipt.OwnerSale, s.ID)
	require.NoError(t, err)
	successor, err := services.Ledger.ReissueReceipt(ctx, caller, original.ID)
	require.NoError(t, err)

	all, err := services.Ledger.ListReceipts(ctx, receipt.OwnerSale, s.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, receipt.StatusReissued, all[0].Status)
	require.NotNil(t, all[0].SupersededBy)
	assert.Equal(t, successor.ID, *all[0].SupersededBy)
	assert.Equal(t, receipt.StatusIssued, all[1].Status)
}
