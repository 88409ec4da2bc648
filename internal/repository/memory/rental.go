package memory

import (
	"context"
	"fmt"
	"time"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
)

type rentalRepository struct {
	s *Store
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	defer r.s.lock()()
	st := r.s.db.st
	if _, ok := st.rentals[rt.ID]; ok {
		return fmt.Errorf("%w: rental %s already exists", domain.ErrInvalidInput, rt.ID)
	}
	now := time.Now()
	rt.CreatedOn = now
	rt.UpdatedOn = now
	st.rentals[rt.ID] = copyRental(rt)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	defer r.s.lock()()
	rt, ok := r.s.db.st.rentals[id]
	if !ok {
		return nil, notFound("rental", id)
	}
	return copyRental(rt), nil
}

// GetForUpdate needs no extra locking: transactions already hold the store.
func (r *rentalRepository) GetForUpdate(ctx context.Context, id string) (*domain.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r *rentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	defer r.s.lock()()
	var out []*domain.Rental
	for _, rt := range r.s.db.st.rentals {
		if filter.Status != "" && rt.Status != filter.Status {
			continue
		}
		if filter.RenterName != "" && rt.RenterName != filter.RenterName {
			continue
		}
		out = append(out, copyRental(rt))
	}
	sortRentals(out)
	return out, nil
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	defer r.s.lock()()
	st := r.s.db.st
	if _, ok := st.rentals[rt.ID]; !ok {
		return notFound("rental", rt.ID)
	}
	rt.UpdatedOn = time.Now()
	st.rentals[rt.ID] = copyRental(rt)
	return nil
}

// Delete mirrors the schema: tickets cascade, tolls lose their rental.
func (r *rentalRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	st := r.s.db.st
	if _, ok := st.rentals[id]; !ok {
		return notFound("rental", id)
	}
	delete(st.rentals, id)
	for k, t := range st.tickets {
		if t.RentalID == id {
			delete(st.tickets, k)
		}
	}
	for _, t := range st.tolls {
		if t.RentalID != nil && *t.RentalID == id {
			t.RentalID = nil
		}
	}
	return nil
}
