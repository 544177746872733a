package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishledger/internal/domain/reports"
)

var march = reports.Period{
	From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	To:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
}

func TestSaleFactsQuery_HalfOpenPeriod(t *testing.T) {
	sql, args, err := NewReportRepo(nil).saleFactsQuery(march).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "s.doc_date >= $1")
	assert.Contains(t, sql, "s.doc_date < $2")
	assert.Equal(t, []any{march.From, march.To}, args)
	assert.Contains(t, sql, "AS cost_of_goods")
	assert.Contains(t, sql, "AS voided_receipts")
}

func TestExpenseTotalQuery(t *testing.T) {
	sql, args, err := NewReportRepo(nil).expenseTotalQuery(march).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM doc_expenses")
	assert.Len(t, args, 2)
}
