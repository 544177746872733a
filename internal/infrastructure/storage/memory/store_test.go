package memory

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
	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/domain/documents/receipt"
)

func newLot(number, qty string) *purchase.Lot {
	lot := purchase.NewLot(id.New(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), types.MustDecimal(qty), types.MustDecimal("2"))
	lot.Number = number
	return lot
}

func TestStore_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewPurchaseRepo(store)
	boom := errors.New("boom")

	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Create(ctx, newLot("PUR-2025-000001", "10")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	totals, err := NewStockRepo(store).Totals(ctx)
	require.NoError(t, err)
	assert.True(t, totals.PurchasedKg.IsZero())
}

func TestStore_NestedTransactionReusesOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewPurchaseRepo(store)

	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		return store.RunInTransaction(ctx, func(ctx context.Context) error {
			return repo.Create(ctx, newLot("PUR-2025-000001", "10"))
		})
	})
	require.NoError(t, err)

	lots, err := NewStockRepo(store).LotBalances(ctx)
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

func TestStore_ReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewPurchaseRepo(store)

	err := store.ReadOnly(ctx, func(ctx context.Context) error {
		return repo.Create(ctx, newLot("PUR-2025-000001", "10"))
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestPurchaseRepo_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewPurchaseRepo(NewStore())

	require.NoError(t, repo.Create(ctx, newLot("PUR-2025-000001", "10")))
	err := repo.Create(ctx, newLot("PUR-2025-000001", "5"))
	assert.True(t, apperror.IsDuplicateNumber(err))
}

func TestLotSource_RequiresWriteTransaction(t *testing.T) {
	store := NewStore()
	_, err := NewLotSource(store).LockOpenLots(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}

func TestReceiptRepo_OneLiveReceiptPerOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewReceiptRepo(NewStore())
	owner := id.New()
	now := time.Now()

	first := receipt.New(receipt.OwnerSale, owner, "RCP-2025-000001", now)
	require.NoError(t, repo.Create(ctx, first))

	second := receipt.New(receipt.OwnerSale, owner, "RCP-2025-000002", now)
	assert.True(t, apperror.HasCode(repo.Create(ctx, second), apperror.CodeBusinessRule))

	dup := receipt.New(receipt.OwnerSale, id.New(), "RCP-2025-000001", now)
	assert.True(t, apperror.IsDuplicateNumber(repo.Create(ctx, dup)))

	live, err := repo.GetLive(ctx, receipt.OwnerSale, owner)
	require.NoError(t, err)
	assert.Equal(t, first.ID, live.ID)

	require.NoError(t, live.Void(now))
	require.NoError(t, repo.Update(ctx, live))
	_, err = repo.GetLive(ctx, receipt.OwnerSale, owner)
	assert.True(t, apperror.IsNotFound(err))

	stale, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	stale.Version = 1
	stale.Touch()
	assert.True(t, apperror.HasCode(repo.Update(ctx, stale), apperror.CodeConcurrentModification))
}

func TestStore_SupersededByCheckedAtCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewReceiptRepo(store)
	owner := id.New()
	now := time.Now()

	original := receipt.New(receipt.OwnerSale, owner, "RCP-2025-000001", now)
	require.NoError(t, repo.Create(ctx, original))

	t.Run("successor inserted after the original is updated", func(t *testing.T) {
		rc, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)

		err = store.RunInTransaction(ctx, func(ctx context.Context) error {
			successor := receipt.New(receipt.OwnerSale, owner, "RCP-2025-000002", now)
			require.NoError(t, rc.Reissue(successor.ID, now))
			if err := repo.Update(ctx, rc); err != nil {
				return err
			}
			return repo.Create(ctx, successor)
		})
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, receipt.StatusReissued, stored.Status)
	})

	t.Run("dangling successor rolls back", func(t *testing.T) {
		other := receipt.New(receipt.OwnerPurchase, id.New(), "RCP-2025-000003", now)
		require.NoError(t, repo.Create(ctx, other))

		err := store.RunInTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, other.Reissue(id.New(), now))
			return repo.Update(ctx, other)
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule), "got %v", err)

		stored, err := repo.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, receipt.StatusIssued, stored.Status)
		assert.Nil(t, stored.SupersededBy)
	})
}
