package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishledger/internal/app"
	"fishledger/internal/core/id"
	"fishledger/internal/core/security"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/audit"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/ledger"
	infranum "fishledger/internal/infrastructure/numerator"
)

func TestMemoryServices_ShareOneStore(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	services := app.NewServices(app.MemoryStores(), infranum.New(infranum.NewMemoryCounter()), app.Options{
		Clock: func() time.Time { return day },
	})
	caller := security.NewCaller(id.New(), security.PermAll)

	lot, err := services.Ledger.RecordPurchase(ctx, caller, ledger.PurchaseInput{
		SupplierID:   id.New(),
		PurchaseDate: day,
		QuantityKg:   types.MustDecimal("40"),
		PricePerKg:   types.MustDecimal("6"),
	})
	require.NoError(t, err)

	_, err = services.Ledger.RecordSale(ctx, caller, sale.Terms{
		CustomerID: id.New(),
		SaleDate:   day,
		QuantityKg: types.MustDecimal("15"),
		PricePerKg: types.MustDecimal("9"),
	})
	require.NoError(t, err)

	current, err := services.Stock.Current(ctx)
	require.NoError(t, err)
	assert.True(t, current.Equal(types.MustDecimal("25")), "got %s", current)

	history, err := services.Audit.History(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, audit.ActionCreate, history[0].Action)
	assert.Equal(t, caller.UserID, history[0].UserID)
}
