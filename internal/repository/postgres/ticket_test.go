package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
	"rentaltoll-backend/internal/repository/postgres"
)

func TestTicketRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTicketRepository(db)
	ctx := context.Background()
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Create", func(t *testing.T) {
		ticket := &domain.Ticket{
			ID:       "k-1",
			RentalID: "r-1",
			IssuedOn: issued,
			Time:     "12:00",
			Category: domain.TicketCategoryParking,
			Amount:   decimal.NewFromInt(40),
		}
		mock.ExpectQuery("INSERT INTO tickets").
			WithArgs("k-1", "r-1", issued, "12:00", domain.TicketCategoryParking, "", ticket.Amount, "", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_on"}).AddRow(time.Now()))

		assert.NoError(t, repo.Create(ctx, ticket))
	})

	t.Run("List by rental", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tickets WHERE rental_id = \\$1").
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "rental_id", "issued_on", "issued_time", "category", "location", "amount", "description", "created_on"}).
				AddRow("k-1", "r-1", issued, "12:00", "Red Light", "Main St", "75.00", "", time.Now()))

		tickets, err := repo.List(ctx, repository.TicketFilter{RentalID: "r-1"})
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, domain.TicketCategoryRedLight, tickets[0].Category)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tickets WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DeleteByRental", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM tickets WHERE rental_id = \\$1").
			WithArgs("r-1").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteByRental(ctx, "r-1")
		assert.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
