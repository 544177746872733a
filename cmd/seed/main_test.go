package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishledger/internal/app"
	infranum "fishledger/internal/infrastructure/numerator"
	"fishledger/pkg/logger"
)

func TestSeedDemoData_FitsInStock(t *testing.T) {
	ctx := context.Background()
	services := app.NewServices(app.MemoryStores(), infranum.New(infranum.NewMemoryCounter()), app.Options{})

	require.NoError(t, seedDemoData(ctx, services.Ledger, logger.NewNop()))

	rec, err := services.Stock.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
	// 750 kg bought, 570 kg sold
	assert.Equal(t, "180", rec.PurchasedKg.Sub(rec.SoldKg).String())
}
