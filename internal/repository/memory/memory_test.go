package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
)

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	rental := &domain.Rental{ID: "r-1", RenterName: "Ana", Amount: decimal.NewFromInt(100), Status: domain.RentalStatusActive}
	require.NoError(t, store.Rentals().Create(ctx, rental))

	got, err := store.Rentals().GetByID(ctx, "r-1")
	require.NoError(t, err)
	got.RenterName = "changed"

	again, err := store.Rentals().GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.RenterName)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Rentals().Create(ctx, &domain.Rental{ID: "r-1", Amount: decimal.NewFromInt(1)}))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		rt, err := tx.Rentals().GetForUpdate(ctx, "r-1")
		if err != nil {
			return err
		}
		rt.TotalTolls = decimal.NewFromInt(99)
		if err := tx.Rentals().Update(ctx, rt); err != nil {
			return err
		}
		if err := tx.Tolls().Create(ctx, &domain.Toll{ID: "T1", LaneTxnID: "T1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rt, err := store.Rentals().GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.True(t, rt.TotalTolls.IsZero())

	_, err = store.Tolls().GetByID(ctx, "T1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTollRepository(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	rentalID := "r-1"
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Tolls().Create(ctx, &domain.Toll{ID: "T1", LaneTxnID: "T1", TransactionAt: base, Status: domain.TollStatusUnmatched}))
	require.NoError(t, store.Tolls().Create(ctx, &domain.Toll{ID: "T2", LaneTxnID: "T2", TransactionAt: base.Add(time.Hour), Status: domain.TollStatusUnmatched}))

	t.Run("Lane txn id is unique", func(t *testing.T) {
		err := store.Tolls().Create(ctx, &domain.Toll{ID: "other", LaneTxnID: "T1"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("UpdateMany attaches and detaches", func(t *testing.T) {
		n, err := store.Tolls().UpdateMany(ctx, []string{"T1", "missing"}, repository.TollAssignment{RentalID: &rentalID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		matched, err := store.Tolls().List(ctx, repository.TollFilter{RentalID: rentalID})
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, domain.TollStatusMatched, matched[0].Status)

		_, err = store.Tolls().UpdateMany(ctx, []string{"T1"}, repository.TollAssignment{})
		require.NoError(t, err)
		unmatched, err := store.Tolls().List(ctx, repository.TollFilter{Status: domain.TollStatusUnmatched})
		require.NoError(t, err)
		require.Len(t, unmatched, 2)
		assert.Equal(t, "T2", unmatched[0].ID, "newest first")
	})

	t.Run("FindByLaneTxnID", func(t *testing.T) {
		toll, err := store.Tolls().FindByLaneTxnID(ctx, "T2")
		require.NoError(t, err)
		assert.Equal(t, "T2", toll.ID)

		_, err = store.Tolls().FindByLaneTxnID(ctx, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		n, err := store.Tolls().DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

func TestRentalDeleteCascades(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	rentalID := "r-1"

	require.NoError(t, store.Rentals().Create(ctx, &domain.Rental{ID: rentalID}))
	require.NoError(t, store.Tickets().Create(ctx, &domain.Ticket{ID: "k-1", RentalID: rentalID}))
	toll := &domain.Toll{ID: "T1"}
	toll.Attach(rentalID)
	require.NoError(t, store.Tolls().Create(ctx, toll))

	require.NoError(t, store.Rentals().Delete(ctx, rentalID))

	_, err := store.Tickets().GetByID(ctx, "k-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := store.Tolls().GetByID(ctx, "T1")
	require.NoError(t, err)
	assert.Nil(t, got.RentalID)

	assert.ErrorIs(t, store.Rentals().Delete(ctx, rentalID), domain.ErrNotFound)
}
