package reports

import (
	"context"
	"fmt"

	"fishledger/internal/core/tx"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/documents/sale"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
	txm  tx.ReadOnlyManager
}

// NewService creates a new reports service.
func NewService(repo Repository, txm tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txm: txm}
}

// Margin computes revenue, cost of goods, expenses and receivables for period.
// Facts and expenses are read in one read-only transaction so they agree.
func (s *Service) Margin(ctx context.Context, period Period) (*MarginReport, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	var (
		facts    []SaleFact
		expenses types.Money
	)
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if facts, err = s.repo.SaleFacts(ctx, period); err != nil {
			return fmt.Errorf("sale facts: %w", err)
		}
		if expenses, err = s.repo.ExpenseTotal(ctx, period); err != nil {
			return fmt.Errorf("expense total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return BuildMargin(period, facts, expenses), nil
}

// BuildMargin aggregates facts into a report at full precision.
func BuildMargin(period Period, facts []SaleFact, expenses types.Money) *MarginReport {
	report := &MarginReport{
		Period:      period,
		QuantityKg:  types.Zero(),
		Revenue:     types.Zero(),
		CostOfGoods: types.Zero(),
		Receivables: types.Zero(),
		Expenses:    expenses,
		Lines:       make([]MarginLine, 0, len(facts)),
	}

	for _, f := range facts {
		if !f.Recognized() {
			report.ExcludedSales++
			continue
		}

		outstanding := sale.Account{Total: f.TotalAmount, Paid: f.Paid, IsCredit: f.IsCredit}.OutstandingBalance()
		report.Lines = append(report.Lines, MarginLine{
			SaleID:        f.SaleID,
			InvoiceNumber: f.InvoiceNumber,
			SaleDate:      f.SaleDate,
			QuantityKg:    f.QuantityKg,
			Revenue:       f.TotalAmount,
			CostOfGoods:   f.CostOfGoods,
			Margin:        f.TotalAmount.Sub(f.CostOfGoods),
			Outstanding:   outstanding,
		})

		report.SalesCount++
		report.QuantityKg = report.QuantityKg.Add(f.QuantityKg)
		report.Revenue = report.Revenue.Add(f.TotalAmount)
		report.CostOfGoods = report.CostOfGoods.Add(f.CostOfGoods)
		report.Receivables = report.Receivables.Add(outstanding)
	}

	report.GrossMargin = report.Revenue.Sub(report.CostOfGoods)
	report.NetMargin = report.GrossMargin.Sub(report.Expenses)
	report.GrossMarginPct = types.Zero()
	if report.Revenue.IsPositive() {
		report.GrossMarginPct = report.GrossMargin.Mul(types.Hundred()).Div(report.Revenue)
	}

	return report
}
