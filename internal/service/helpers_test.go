package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/reconcile"
	"rentaltoll-backend/internal/repository"
	"rentaltoll-backend/internal/repository/memory"
	"rentaltoll-backend/internal/service"
)

const csvHeader = "Lane Txn ID,Tag/Plate #,Agency,Entry Plaza,Exit Plaza,Class,Date,Exit Time,Amount\n"

type fixture struct {
	store   repository.Store
	rentals service.RentalService
	tolls   service.TollService
	tickets service.TicketService
	ledger  service.LedgerService
}

func newFixture(store repository.Store) *fixture {
	return &fixture{
		store:   store,
		rentals: service.NewRentalService(store),
		tolls:   service.NewTollService(store, time.UTC),
		tickets: service.NewTicketService(store),
		ledger:  service.NewLedgerService(store),
	}
}

func setup() *fixture {
	return newFixture(memory.NewStore())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func jan(day, hour int) time.Time {
	return time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC)
}

func csvBody(rows ...string) *strings.Reader {
	return strings.NewReader(csvHeader + strings.Join(rows, "\n") + "\n")
}

func tollRow(id, date, clock, amount string) string {
	return fmt.Sprintf("%s,ABC123,NTTA,,Airport,2,%s,%s,%s", id, date, clock, amount)
}

func (f *fixture) createRental(t *testing.T, renter string, start, end time.Time, amount string) *domain.Rental {
	t.Helper()
	r, _, err := f.rentals.CreateRental(context.Background(), service.RentalInput{
		RenterName: renter,
		StartDate:  start,
		EndDate:    end,
		Amount:     dec(amount),
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) rental(t *testing.T, id string) *domain.Rental {
	t.Helper()
	r, err := f.store.Rentals().GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

// assertLedgerConsistent checks every rental's stored totals against its
// attached records.
func assertLedgerConsistent(t *testing.T, store repository.Store) {
	t.Helper()
	ctx := context.Background()
	rentals, err := store.Rentals().List(ctx, repository.RentalFilter{})
	require.NoError(t, err)
	for _, r := range rentals {
		tolls, err := store.Tolls().List(ctx, repository.TollFilter{RentalID: r.ID})
		require.NoError(t, err)
		tickets, err := store.Tickets().List(ctx, repository.TicketFilter{RentalID: r.ID})
		require.NoError(t, err)
		assert.True(t, r.TotalTolls.Equal(reconcile.SumTolls(tolls)), "rental %s tolls %s", r.ID, r.TotalTolls)
		assert.True(t, r.TotalTickets.Equal(reconcile.SumTickets(tickets)), "rental %s tickets %s", r.ID, r.TotalTickets)
		for _, toll := range tolls {
			assert.Equal(t, domain.TollStatusMatched, toll.Status)
		}
	}
}

// failingTolls fails Create for one toll id.
type failingTolls struct {
	repository.TollRepository
	failOn string
}

func (f failingTolls) Create(ctx context.Context, t *domain.Toll) error {
	if t.ID == f.failOn {
		return fmt.Errorf("insert toll: %w: disk full", domain.ErrStorage)
	}
	return f.TollRepository.Create(ctx, t)
}

type failingStore struct {
	repository.Store
	failOn string
}

func (s *failingStore) Tolls() repository.TollRepository {
	return failingTolls{TollRepository: s.Store.Tolls(), failOn: s.failOn}
}

func (s *failingStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(&failingStore{Store: tx, failOn: s.failOn})
	})
}
