package memory

import (
	"context"
	"sort"
	"time"

	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/reports"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	store *Store
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a report repository over store.
func NewReportRepo(store *Store) *ReportRepo {
	return &ReportRepo{store: store}
}

func within(p reports.Period, t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

func (r *ReportRepo) SaleFacts(ctx context.Context, period reports.Period) ([]reports.SaleFact, error) {
	var facts []reports.SaleFact
	err := r.store.read(ctx, func(st *state) error {
		for _, s := range st.sales {
			if !within(period, s.Date) {
				continue
			}
			f := reports.SaleFact{
				SaleID:        s.ID,
				InvoiceNumber: s.Number,
				SaleDate:      s.Date,
				QuantityKg:    s.QuantityKg,
				TotalAmount:   s.TotalAmount,
				IsCredit:      s.IsCredit,
				Paid:          types.Zero(),
				CostOfGoods:   types.Zero(),
			}
			for _, p := range st.payments[s.ID] {
				f.Paid = f.Paid.Add(p.Amount)
			}
			for _, it := range st.items[s.ID] {
				if lot, ok := st.lots[it.PurchaseID]; ok {
					f.CostOfGoods = f.CostOfGoods.Add(it.QuantityKg.Mul(lot.PricePerKg))
				}
			}
			for _, rc := range st.receipts {
				if rc.OwnerType != receipt.OwnerSale || rc.OwnerID != s.ID {
					continue
				}
				switch rc.Status {
				case receipt.StatusIssued:
					f.LiveReceipts++
				case receipt.StatusVoided:
					f.VoidedReceipts++
				}
			}
			facts = append(facts, f)
		}
		return nil
	})
	sort.Slice(facts, func(i, j int) bool {
		if !facts[i].SaleDate.Equal(facts[j].SaleDate) {
			return facts[i].SaleDate.Before(facts[j].SaleDate)
		}
		return id.Compare(facts[i].SaleID, facts[j].SaleID) < 0
	})
	return facts, err
}

func (r *ReportRepo) ExpenseTotal(ctx context.Context, period reports.Period) (types.Money, error) {
	total := types.Zero()
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.expenses {
			if within(period, e.ExpenseDate) {
				total = total.Add(e.Amount)
			}
		}
		return nil
	})
	return total, err
}
