package allocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

type staticSource struct {
	lots []OpenLot
	err  error
}

func (s staticSource) LockOpenLots(context.Context) ([]OpenLot, error) {
	return s.lots, s.err
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestPlan_OldestLotFirst(t *testing.T) {
	older := OpenLot{PurchaseID: id.New(), PurchaseDate: day(1), RemainingKg: types.MustDecimal("10")}
	newer := OpenLot{PurchaseID: id.New(), PurchaseDate: day(2), RemainingKg: types.MustDecimal("20")}

	drafts, err := Plan([]OpenLot{newer, older}, types.MustDecimal("15"), types.MustDecimal("4"))
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, older.PurchaseID, drafts[0].PurchaseID)
	assert.True(t, drafts[0].QuantityKg.Equal(types.MustDecimal("10")))
	assert.Equal(t, newer.PurchaseID, drafts[1].PurchaseID)
	assert.True(t, drafts[1].QuantityKg.Equal(types.MustDecimal("5")))
	assert.True(t, drafts[1].TotalPrice.Equal(types.MustDecimal("20")))
}

func TestPlan_SameDateOrdersByID(t *testing.T) {
	first := OpenLot{PurchaseID: id.New(), PurchaseDate: day(3), RemainingKg: types.MustDecimal("5")}
	second := OpenLot{PurchaseID: id.New(), PurchaseDate: day(3), RemainingKg: types.MustDecimal("5")}

	drafts, err := Plan([]OpenLot{second, first}, types.MustDecimal("3"), types.Zero())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, first.PurchaseID, drafts[0].PurchaseID)
}

func TestPlan_SkipsExhaustedLots(t *testing.T) {
	empty := OpenLot{PurchaseID: id.New(), PurchaseDate: day(1), RemainingKg: types.Zero()}
	open := OpenLot{PurchaseID: id.New(), PurchaseDate: day(2), RemainingKg: types.MustDecimal("7")}

	drafts, err := Plan([]OpenLot{empty, open}, types.MustDecimal("7"), types.MustDecimal("1"))
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, open.PurchaseID, drafts[0].PurchaseID)
}

func TestPlan_InsufficientStockReportsShortfall(t *testing.T) {
	lots := []OpenLot{
		{PurchaseID: id.New(), PurchaseDate: day(1), RemainingKg: types.MustDecimal("50")},
		{PurchaseID: id.New(), PurchaseDate: day(2), RemainingKg: types.MustDecimal("20")},
	}

	drafts, err := Plan(lots, types.MustDecimal("80"), types.MustDecimal("3"))
	assert.Nil(t, drafts)
	require.True(t, apperror.IsInsufficientStock(err))

	shortfall, ok := apperror.DecimalDetail(err, "shortfall")
	require.True(t, ok)
	assert.True(t, shortfall.Equal(types.MustDecimal("10")))
}

func TestPlan_SumOfDraftsEqualsRequest(t *testing.T) {
	lots := []OpenLot{
		{PurchaseID: id.New(), PurchaseDate: day(1), RemainingKg: types.MustDecimal("0.333")},
		{PurchaseID: id.New(), PurchaseDate: day(2), RemainingKg: types.MustDecimal("1.25")},
		{PurchaseID: id.New(), PurchaseDate: day(3), RemainingKg: types.MustDecimal("4")},
	}
	requested := types.MustDecimal("2.5")

	drafts, err := Plan(lots, requested, types.MustDecimal("2"))
	require.NoError(t, err)

	total := types.Zero()
	for _, d := range drafts {
		assert.True(t, d.QuantityKg.IsPositive())
		total = total.Add(d.QuantityKg)
	}
	assert.True(t, total.Equal(requested), "got %s", total)
}

func TestAllocator_Validates(t *testing.T) {
	a := NewAllocator(staticSource{})

	_, err := a.Allocate(context.Background(), types.Zero(), types.MustDecimal("1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = a.Allocate(context.Background(), types.MustDecimal("1"), types.MustDecimal("-1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestAllocator_PropagatesSourceError(t *testing.T) {
	a := NewAllocator(staticSource{err: errors.New("lock timeout")})

	_, err := a.Allocate(context.Background(), types.MustDecimal("1"), types.MustDecimal("1"))
	assert.ErrorContains(t, err, "lock timeout")
}

func TestAllocator_EmptyStock(t *testing.T) {
	a := NewAllocator(staticSource{})

	_, err := a.Allocate(context.Background(), types.MustDecimal("1"), types.MustDecimal("1"))
	require.True(t, apperror.IsInsufficientStock(err))
	available, _ := apperror.DecimalDetail(err, "available")
	assert.True(t, available.IsZero())
}
