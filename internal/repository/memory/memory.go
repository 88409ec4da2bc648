// Package memory is a map-backed repository.Store. A transaction holds the
// store lock for its whole duration and restores a snapshot on failure.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
)

type state struct {
	rentals map[string]*domain.Rental
	tolls   map[string]*domain.Toll
	tickets map[string]*domain.Ticket
}

func newState() *state {
	return &state{
		rentals: make(map[string]*domain.Rental),
		tolls:   make(map[string]*domain.Toll),
		tickets: make(map[string]*domain.Ticket),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.rentals {
		c.rentals[k] = copyRental(v)
	}
	for k, v := range s.tolls {
		c.tolls[k] = copyToll(v)
	}
	for k, v := range s.tickets {
		c.tickets[k] = copyTicket(v)
	}
	return c
}

type database struct {
	mu sync.Mutex
	st *state
}

type Store struct {
	db   *database
	inTx bool
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{db: &database{st: newState()}}
}

func (s *Store) Rentals() repository.RentalRepository { return &rentalRepository{s: s} }
func (s *Store) Tolls() repository.TollRepository     { return &tollRepository{s: s} }
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepository{s: s} }

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.st.clone()
	if err := fn(&Store{db: s.db, inTx: true}); err != nil {
		s.db.st = snapshot
		return err
	}
	return nil
}

// lock guards a single call made outside a transaction.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

func copyRental(r *domain.Rental) *domain.Rental {
	c := *r
	return &c
}

func copyToll(t *domain.Toll) *domain.Toll {
	c := *t
	if t.RentalID != nil {
		id := *t.RentalID
		c.RentalID = &id
	}
	return &c
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	c := *t
	return &c
}

func sortRentals(rentals []*domain.Rental) {
	sort.Slice(rentals, func(i, j int) bool {
		a, b := rentals[i], rentals[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.After(b.StartDate)
		}
		if !a.CreatedOn.Equal(b.CreatedOn) {
			return a.CreatedOn.After(b.CreatedOn)
		}
		return a.ID < b.ID
	})
}

func sortTolls(tolls []*domain.Toll) {
	sort.Slice(tolls, func(i, j int) bool {
		a, b := tolls[i], tolls[j]
		if !a.TransactionAt.Equal(b.TransactionAt) {
			return a.TransactionAt.After(b.TransactionAt)
		}
		return a.ID < b.ID
	})
}

func sortTickets(tickets []*domain.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		a, b := tickets[i], tickets[j]
		if !a.IssuedOn.Equal(b.IssuedOn) {
			return a.IssuedOn.Before(b.IssuedOn)
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.CreatedOn.Before(b.CreatedOn)
	})
}
