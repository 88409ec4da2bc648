package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
	"rentaltoll-backend/internal/repository/postgres"
)

var tollCols = []string{"id", "lane_txn_id", "transaction_at", "location", "amount", "plate", "agency", "class", "status", "rental_id", "created_on"}

func TestTollRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTollRepository(db)
	ctx := context.Background()
	toll := &domain.Toll{
		ID:            "T1",
		LaneTxnID:     "T1",
		TransactionAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Location:      "Airport",
		Amount:        decimal.RequireFromString("5.00"),
		Status:        domain.TollStatusUnmatched,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO tolls").
			WithArgs(toll.ID, toll.LaneTxnID, toll.TransactionAt, toll.Location, toll.Amount, "", "", "",
				domain.TollStatusUnmatched, nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_on"}).AddRow(time.Now()))

		assert.NoError(t, repo.Create(ctx, toll))
	})

	t.Run("Unique lane txn id violation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO tolls").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, toll)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTollRepository_Queries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTollRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("FindByLaneTxnID", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tolls WHERE lane_txn_id = \\$1").
			WithArgs("T1").
			WillReturnRows(sqlmock.NewRows(tollCols).
				AddRow("T1", "T1", now, "Airport", "5.00", "", "NTTA", "2", "Matched", "r-1", now))

		toll, err := repo.FindByLaneTxnID(ctx, "T1")
		require.NoError(t, err)
		require.NotNil(t, toll.RentalID)
		assert.Equal(t, "r-1", *toll.RentalID)
		assert.True(t, toll.IsMatched())
	})

	t.Run("Empty lane txn id never matches", func(t *testing.T) {
		_, err := repo.FindByLaneTxnID(ctx, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List unmatched", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tolls WHERE 1=1 AND status = \\$1 ORDER BY").
			WithArgs(domain.TollStatusUnmatched).
			WillReturnRows(sqlmock.NewRows(tollCols).
				AddRow("T2", "", now, "Tower", "-1.00", "", "", "", "Unmatched", nil, now))

		tolls, err := repo.List(ctx, repository.TollFilter{Status: domain.TollStatusUnmatched})
		require.NoError(t, err)
		require.Len(t, tolls, 1)
		assert.Nil(t, tolls[0].RentalID)
		assert.Equal(t, "-1", tolls[0].Amount.String())
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTollRepository_Writes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTollRepository(db)
	ctx := context.Background()
	rentalID := "r-1"

	t.Run("UpdateMany attaches", func(t *testing.T) {
		mock.ExpectExec("UPDATE tolls SET status = \\$1, rental_id = \\$2 WHERE id = ANY\\(\\$3\\)").
			WithArgs(domain.TollStatusMatched, rentalID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := repo.UpdateMany(ctx, []string{"T1", "T2"}, repository.TollAssignment{RentalID: &rentalID})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("UpdateMany with no ids is a no-op", func(t *testing.T) {
		n, err := repo.UpdateMany(ctx, nil, repository.TollAssignment{})
		assert.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Delete missing toll", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM tolls WHERE id = \\$1").
			WithArgs("nope").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "nope"), domain.ErrNotFound)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM tolls").WillReturnResult(sqlmock.NewResult(0, 7))

		n, err := repo.DeleteAll(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
