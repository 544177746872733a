package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
)

func money(s string) types.Money { return types.MustDecimal(s) }

func TestBuildMargin(t *testing.T) {
	period := Period{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	facts := []SaleFact{
		{
			SaleID: id.New(), QuantityKg: money("30"), TotalAmount: money("240"),
			IsCredit: true, Paid: money("100"), CostOfGoods: money("150"),
		},
		{
			SaleID: id.New(), QuantityKg: money("10"), TotalAmount: money("60"),
			Paid: money("60"), CostOfGoods: money("40"), LiveReceipts: 1, VoidedReceipts: 1,
		},
		{
			SaleID: id.New(), QuantityKg: money("5"), TotalAmount: money("40"),
			CostOfGoods: money("25"), VoidedReceipts: 1,
		},
	}

	report := BuildMargin(period, facts, money("20"))

	assert.Equal(t, 2, report.SalesCount)
	assert.Equal(t, 1, report.ExcludedSales)
	assert.True(t, report.QuantityKg.Equal(money("40")))
	assert.True(t, report.Revenue.Equal(money("300")))
	assert.True(t, report.CostOfGoods.Equal(money("190")))
	assert.True(t, report.GrossMargin.Equal(money("110")))
	assert.True(t, report.NetMargin.Equal(money("90")))
	assert.True(t, report.Receivables.Equal(money("140")))
	require.Len(t, report.Lines, 2)
	assert.True(t, report.Lines[0].Margin.Equal(money("90")))
}

func TestBuildMargin_NoRevenue(t *testing.T) {
	report := BuildMargin(Period{}, nil, types.Zero())
	assert.True(t, report.GrossMarginPct.IsZero())
	assert.Empty(t, report.Lines)
}

func TestPeriod_Validate(t *testing.T) {
	now := time.Now()
	assert.NoError(t, Period{From: now, To: now.Add(time.Hour)}.Validate())
	assert.True(t, apperror.HasCode(Period{From: now, To: now}.Validate(), apperror.CodeValidation))
	assert.Error(t, Period{}.Validate())
}
