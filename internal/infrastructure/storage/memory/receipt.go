package memory

import (
	"context"
	"sort"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/domain/documents/receipt"
)

// ReceiptRepo implements receipt.Repository.
type ReceiptRepo struct {
	store *Store
}

var _ receipt.Repository = (*ReceiptRepo)(nil)

// NewReceiptRepo creates a receipt repository over store.
func NewReceiptRepo(store *Store) *ReceiptRepo {
	return &ReceiptRepo{store: store}
}

// errLiveReceiptExists mirrors the partial unique index on issued receipts.
func errLiveReceiptExists(r *receipt.Receipt) error {
	return apperror.NewBusinessRule(apperror.CodeBusinessRule, "owner already has an issued receipt").
		WithDetail("ownerType", string(r.OwnerType)).
		WithDetail("ownerId", r.OwnerID)
}

func hasOtherLive(st *state, r *receipt.Receipt) bool {
	for _, other := range st.receipts {
		if other.ID != r.ID && other.OwnerType == r.OwnerType && other.OwnerID == r.OwnerID && other.IsLive() {
			return true
		}
	}
	return false
}

func (r *ReceiptRepo) Create(ctx context.Context, rc *receipt.Receipt) error {
	return r.store.write(ctx, func(st *state) error {
		for _, other := range st.receipts {
			if other.Number == rc.Number {
				return apperror.NewDuplicateNumber("receipt", rc.Number)
			}
		}
		if rc.IsLive() && hasOtherLive(st, rc) {
			return errLiveReceiptExists(rc)
		}
		st.receipts[rc.ID] = *rc
		return nil
	})
}

func (r *ReceiptRepo) GetByID(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	var out receipt.Receipt
	err := r.store.read(ctx, func(st *state) error {
		rc, ok := st.receipts[receiptID]
		if !ok {
			return apperror.NewNotFound("receipt", receiptID)
		}
		out = rc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is GetByID: the transaction already holds the store's write lock.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	return r.GetByID(ctx, receiptID)
}

func (r *ReceiptRepo) GetLive(ctx context.Context, ownerType receipt.OwnerType, ownerID id.ID) (*receipt.Receipt, error) {
	var out *receipt.Receipt
	err := r.store.read(ctx, func(st *state) error {
		for _, rc := range st.receipts {
			if rc.OwnerType == ownerType && rc.OwnerID == ownerID && rc.IsLive() {
				found := rc
				out = &found
				return nil
			}
		}
		return apperror.NewNotFound("receipt", ownerID).WithDetail("ownerType", string(ownerType))
	})
	return out, err
}

func (r *ReceiptRepo) ListByOwner(ctx context.Context, ownerType receipt.OwnerType, ownerID id.ID) ([]*receipt.Receipt, error) {
	var out []*receipt.Receipt
	err := r.store.read(ctx, func(st *state) error {
		for _, rc := range st.receipts {
			if rc.OwnerType == ownerType && rc.OwnerID == ownerID {
				found := rc
				out = append(out, &found)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return id.Compare(out[i].ID, out[j].ID) < 0 })
	return out, err
}

func (r *ReceiptRepo) Update(ctx context.Context, rc *receipt.Receipt) error {
	return r.store.write(ctx, func(st *state) error {
		stored, ok := st.receipts[rc.ID]
		if !ok {
			return apperror.NewNotFound("receipt", rc.ID)
		}
		// rc.Version was incremented by the transition.
		if stored.Version != rc.Version-1 {
			return apperror.NewConcurrentModification("receipt", rc.ID)
		}
		if rc.IsLive() && hasOtherLive(st, rc) {
			return errLiveReceiptExists(rc)
		}
		st.receipts[rc.ID] = *rc
		return nil
	})
}
