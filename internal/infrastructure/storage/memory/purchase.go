package memory

import (
	"context"
	"sort"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/domain/allocation"
	"fishledger/internal/domain/documents/purchase"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	store *Store
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a purchase repository over store.
func NewPurchaseRepo(store *Store) *PurchaseRepo {
	return &PurchaseRepo{store: store}
}

func (r *PurchaseRepo) Create(ctx context.Context, lot *purchase.Lot) error {
	return r.store.write(ctx, func(st *state) error {
		for _, l := range st.lots {
			if l.Number == lot.Number {
				return apperror.NewDuplicateNumber("purchase invoice", lot.Number)
			}
		}
		st.lots[lot.ID] = *lot
		return nil
	})
}

func (r *PurchaseRepo) GetByID(ctx context.Context, lotID id.ID) (*purchase.Lot, error) {
	var out purchase.Lot
	err := r.store.read(ctx, func(st *state) error {
		l, ok := st.lots[lotID]
		if !ok {
			return apperror.NewNotFound("purchase", lotID)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is GetByID: the transaction already holds the store's write lock.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, lotID id.ID) (*purchase.Lot, error) {
	return r.GetByID(ctx, lotID)
}

func (r *PurchaseRepo) SetReceiptNumber(ctx context.Context, lotID id.ID, number *string) error {
	return r.store.write(ctx, func(st *state) error {
		l, ok := st.lots[lotID]
		if !ok {
			return apperror.NewNotFound("purchase", lotID)
		}
		if number != nil {
			n := *number
			l.ReceiptNumber = &n
		} else {
			l.ReceiptNumber = nil
		}
		l.Touch()
		st.lots[lotID] = l
		return nil
	})
}

// LotSource implements allocation.LotSource.
type LotSource struct {
	store *Store
}

var _ allocation.LotSource = (*LotSource)(nil)

// NewLotSource creates a lot source over store.
func NewLotSource(store *Store) *LotSource {
	return &LotSource{store: store}
}

// LockOpenLots must run inside a write transaction, whose lock covers every lot.
func (s *LotSource) LockOpenLots(ctx context.Context) ([]allocation.OpenLot, error) {
	if !inWriteTx(ctx) {
		return nil, apperror.NewInternal(errLockOutsideTx)
	}

	st := &s.store.state
	allocated := allocatedByLot(st)
	open := make([]allocation.OpenLot, 0, len(st.lots))
	for _, l := range st.lots {
		remaining := l.QuantityKg.Sub(allocated[l.ID])
		if remaining.IsPositive() {
			open = append(open, allocation.OpenLot{
				PurchaseID:   l.ID,
				PurchaseDate: l.Date,
				RemainingKg:  remaining,
			})
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].PurchaseDate.Equal(open[j].PurchaseDate) {
			return open[i].PurchaseDate.Before(open[j].PurchaseDate)
		}
		return id.Compare(open[i].PurchaseID, open[j].PurchaseID) < 0
	})
	return open, nil
}
