package sale

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

func newTestSale(t *testing.T, qty string) *Sale {
	t.Helper()
	s, err := NewSale(Terms{
		CustomerID:         id.New(),
		SaleDate:           time.Now(),
		QuantityKg:         types.MustDecimal(qty),
		PricePerKg:         types.MustDecimal("8"),
		DiscountPercentage: types.Zero(),
		DeliveryFee:        types.MustDecimal("5"),
	})
	require.NoError(t, err)
	return s
}

func TestSale_ItemsMustCoverQuantity(t *testing.T) {
	s := newTestSale(t, "15")
	require.NoError(t, s.Validate(context.Background()))
	assert.True(t, s.IsDelivery())

	s.AddItem(id.New(), types.MustDecimal("10"))
	assert.Error(t, s.CheckItems())

	s.AddItem(id.New(), types.MustDecimal("5"))
	assert.NoError(t, s.CheckItems())

	assert.Equal(t, 2, s.Items[1].LineNo)
	assert.True(t, s.Items[1].TotalPrice.Equal(types.MustDecimal("40")))
}

func TestAccountOf_SumsPayments(t *testing.T) {
	s := newTestSale(t, "10")
	s.IsCredit = true
	s.Payments = append(s.Payments,
		Payment{Amount: types.MustDecimal("20")},
		Payment{Amount: types.MustDecimal("5.5")},
	)

	acc := AccountOf(s)
	assert.True(t, acc.Paid.Equal(types.MustDecimal("25.5")))
	assert.True(t, acc.OutstandingBalance().Equal(types.MustDecimal("59.5")))
}
