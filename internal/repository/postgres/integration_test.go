//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/app"
	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/migration"
	"rentaltoll-backend/internal/repository"
	"rentaltoll-backend/internal/repository/postgres"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "config/config.test.yaml", "path to config file")
}

// repoRoot walks up to the directory holding go.mod.
func repoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "go.mod not found")
		dir = parent
	}
}

func prepareDB(t *testing.T) *sql.DB {
	t.Helper()
	root := repoRoot(t)
	cfg, err := config.Load(filepath.Join(root, configPath))
	require.NoError(t, err)

	var db *sql.DB
	// Retry connection as DB might still be starting up
	for i := 0; i < 10; i++ {
		db, err = app.OpenDB(context.Background(), cfg)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(t, err, "failed to connect to database")

	ctx := context.Background()
	require.NoError(t, migration.Up(ctx, db, filepath.Join(root, cfg.Database.MigrationsDir)))
	_, err = db.ExecContext(ctx, "TRUNCATE tickets, tolls, rentals")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIntegration_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := postgres.NewStore(prepareDB(t))

	rental := &domain.Rental{
		ID:         uuid.NewString(),
		RenterName: "Ana",
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.RequireFromString("120.50"),
		Status:     domain.RentalStatusActive,
	}
	require.NoError(t, store.Rentals().Create(ctx, rental))

	toll := &domain.Toll{
		ID:            "T1",
		LaneTxnID:     "T1",
		TransactionAt: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
		Location:      "Airport",
		Amount:        decimal.RequireFromString("5.25"),
	}
	toll.Attach(rental.ID)
	require.NoError(t, store.Tolls().Create(ctx, toll))

	dup := *toll
	dup.ID = "T1-copy"
	err := store.Tolls().Create(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ticket := &domain.Ticket{
		ID:       uuid.NewString(),
		RentalID: rental.ID,
		IssuedOn: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Time:     "12:00",
		Category: domain.TicketCategoryParking,
		Amount:   decimal.RequireFromString("40"),
	}
	require.NoError(t, store.Tickets().Create(ctx, ticket))

	got, err := store.Rentals().GetByID(ctx, rental.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(rental.Amount))

	// Deleting the rental frees its tolls and drops its tickets.
	require.NoError(t, store.Rentals().Delete(ctx, rental.ID))
	freed, err := store.Tolls().GetByID(ctx, "T1")
	require.NoError(t, err)
	assert.Nil(t, freed.RentalID)
	_, err = store.Tickets().GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegration_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := postgres.NewStore(prepareDB(t))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		r := &domain.Rental{ID: uuid.NewString(), RenterName: "Ben", Amount: decimal.NewFromInt(1), Status: domain.RentalStatusActive}
		if err := tx.Rentals().Create(ctx, r); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rentals, err := store.Rentals().List(ctx, repository.RentalFilter{})
	require.NoError(t, err)
	assert.Empty(t, rentals)
}
