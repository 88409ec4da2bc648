package memory

import (
	"context"
	"fmt"
	"time"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
)

type ticketRepository struct {
	s *Store
}

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	defer r.s.lock()()
	st := r.s.db.st
	if _, ok := st.tickets[t.ID]; ok {
		return fmt.Errorf("%w: ticket %s already exists", domain.ErrInvalidInput, t.ID)
	}
	if _, ok := st.rentals[t.RentalID]; !ok {
		return notFound("rental", t.RentalID)
	}
	t.CreatedOn = time.Now()
	st.tickets[t.ID] = copyTicket(t)
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	defer r.s.lock()()
	t, ok := r.s.db.st.tickets[id]
	if !ok {
		return nil, notFound("ticket", id)
	}
	return copyTicket(t), nil
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]*domain.Ticket, error) {
	defer r.s.lock()()
	var out []*domain.Ticket
	for _, t := range r.s.db.st.tickets {
		if filter.RentalID != "" && t.RentalID != filter.RentalID {
			continue
		}
		out = append(out, copyTicket(t))
	}
	sortTickets(out)
	return out, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.db.st.tickets[id]; !ok {
		return notFound("ticket", id)
	}
	delete(r.s.db.st.tickets, id)
	return nil
}

func (r *ticketRepository) DeleteByRental(ctx context.Context, rentalID string) (int64, error) {
	defer r.s.lock()()
	var n int64
	for k, t := range r.s.db.st.tickets {
		if t.RentalID == rentalID {
			delete(r.s.db.st.tickets, k)
			n++
		}
	}
	return n, nil
}
