package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/service"
)

func TestTicketService(t *testing.T) {
	ctx := context.Background()
	f := setup()
	a := f.createRental(t, "Ana", jan(1, 0), jan(2, 0), "100")

	first, err := f.tickets.AddTicket(ctx, service.TicketInput{
		RentalID: a.ID, Date: jan(1, 0), Category: "red light", Location: "Main St", Amount: dec("75"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketCategoryRedLight, first.Category)
	assert.Equal(t, "12:00", first.Time)

	second, err := f.tickets.AddTicket(ctx, service.TicketInput{
		RentalID: a.ID, Date: jan(2, 0), Time: "08:30", Category: "Parking", Amount: dec("25"),
	})
	require.NoError(t, err)
	assert.True(t, f.rental(t, a.ID).TotalTickets.Equal(dec("100")))

	t.Run("Delete by id, not position", func(t *testing.T) {
		require.NoError(t, f.tickets.DeleteTicket(ctx, first.ID))

		left, err := f.tickets.ListTickets(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, second.ID, left[0].ID)
		assert.True(t, f.rental(t, a.ID).TotalTickets.Equal(dec("25")))
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := f.tickets.AddTicket(ctx, service.TicketInput{RentalID: a.ID, Date: jan(1, 0), Amount: dec("-5")})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = f.tickets.AddTicket(ctx, service.TicketInput{RentalID: a.ID, Date: jan(1, 0), Category: "Towing", Amount: dec("5")})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = f.tickets.AddTicket(ctx, service.TicketInput{RentalID: "missing", Date: jan(1, 0), Amount: dec("5")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Unknown ticket", func(t *testing.T) {
		assert.ErrorIs(t, f.tickets.DeleteTicket(ctx, "missing"), domain.ErrNotFound)
	})

	assertLedgerConsistent(t, f.store)
}
