package memory

import (
	"context"
	"sort"

	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct {
	store *Store
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a stock repository over store.
func NewStockRepo(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) Totals(ctx context.Context) (stock.Totals, error) {
	totals := stock.Totals{PurchasedKg: types.Zero(), SoldKg: types.Zero(), AllocatedKg: types.Zero()}
	err := r.store.read(ctx, func(st *state) error {
		for _, l := range st.lots {
			totals.PurchasedKg = totals.PurchasedKg.Add(l.QuantityKg)
		}
		for _, s := range st.sales {
			totals.SoldKg = totals.SoldKg.Add(s.QuantityKg)
		}
		for _, items := range st.items {
			for _, it := range items {
				totals.AllocatedKg = totals.AllocatedKg.Add(it.QuantityKg)
			}
		}
		return nil
	})
	return totals, err
}

func (r *StockRepo) LotBalances(ctx context.Context) ([]stock.LotBalance, error) {
	var out []stock.LotBalance
	err := r.store.read(ctx, func(st *state) error {
		allocated := allocatedByLot(st)
		out = make([]stock.LotBalance, 0, len(st.lots))
		for _, l := range st.lots {
			out = append(out, stock.LotBalance{
				PurchaseID:    l.ID,
				InvoiceNumber: l.Number,
				PurchaseDate:  l.Date,
				QuantityKg:    l.QuantityKg,
				AllocatedKg:   allocated[l.ID],
				PricePerKg:    l.PricePerKg,
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PurchaseDate.Equal(out[j].PurchaseDate) {
			return out[i].PurchaseDate.Before(out[j].PurchaseDate)
		}
		return id.Compare(out[i].PurchaseID, out[j].PurchaseID) < 0
	})
	return out, err
}
