package memory

import (
	"context"
	"errors"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/documents/sale"
)

var errLockOutsideTx = errors.New("lot locking requires a write transaction")

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	store *Store
}

var _ sale.Repository = (*SaleRepo)(nil)

// NewSaleRepo creates a sale repository over store.
func NewSaleRepo(store *Store) *SaleRepo {
	return &SaleRepo{store: store}
}

func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	return r.store.write(ctx, func(st *state) error {
		for _, existing := range st.sales {
			if existing.Number == s.Number {
				return apperror.NewDuplicateNumber("sale invoice", s.Number)
			}
		}
		row := *s
		row.Items, row.Payments = nil, nil
		st.sales[s.ID] = row
		st.items[s.ID] = append([]sale.Item(nil), s.Items...)
		st.payments[s.ID] = append([]sale.Payment(nil), s.Payments...)
		return nil
	})
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	var out sale.Sale
	err := r.store.read(ctx, func(st *state) error {
		row, ok := st.sales[saleID]
		if !ok {
			return apperror.NewNotFound("sale", saleID)
		}
		out = row
		out.Items = append(make([]sale.Item, 0, len(st.items[saleID])), st.items[saleID]...)
		out.Payments = append(make([]sale.Payment, 0, len(st.payments[saleID])), st.payments[saleID]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is GetByID: the transaction already holds the store's write lock.
func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.GetByID(ctx, saleID)
}

func (r *SaleRepo) AddPayment(ctx context.Context, p *sale.Payment) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.sales[p.SaleID]; !ok {
			return apperror.NewNotFound("sale", p.SaleID)
		}
		st.payments[p.SaleID] = append(st.payments[p.SaleID], *p)
		return nil
	})
}

func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.sales[saleID]; !ok {
			return apperror.NewNotFound("sale", saleID)
		}
		delete(st.sales, saleID)
		delete(st.items, saleID)
		delete(st.payments, saleID)
		return nil
	})
}

// allocatedByLot sums sale item quantities per purchase lot.
func allocatedByLot(st *state) map[id.ID]types.Kilograms {
	out := make(map[id.ID]types.Kilograms, len(st.lots))
	for _, items := range st.items {
		for _, it := range items {
			out[it.PurchaseID] = out[it.PurchaseID].Add(it.QuantityKg)
		}
	}
	return out
}
