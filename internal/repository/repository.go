package repository

import (
	"context"

	"rentaltoll-backend/internal/domain"
)

type RentalFilter struct {
	Status     domain.RentalStatus
	RenterName string
}

type TollFilter struct {
	Status   domain.TollStatus
	RentalID string
}

type TicketFilter struct {
	RentalID string
}

// TollAssignment moves a set of tolls onto a rental, or back to the
// unmatched holding set when RentalID is nil.
type TollAssignment struct {
	RentalID *string
}

func (a TollAssignment) Status() domain.TollStatus {
	if a.RentalID == nil {
		return domain.TollStatusUnmatched
	}
	return domain.TollStatusMatched
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	// GetForUpdate loads the rental and locks it until the enclosing
	// transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Rental, error)
	List(ctx context.Context, filter RentalFilter) ([]*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error
	Delete(ctx context.Context, id string) error
}

type TollRepository interface {
	Create(ctx context.Context, toll *domain.Toll) error
	GetByID(ctx context.Context, id string) (*domain.Toll, error)
	FindByLaneTxnID(ctx context.Context, laneTxnID string) (*domain.Toll, error)
	List(ctx context.Context, filter TollFilter) ([]*domain.Toll, error)
	Update(ctx context.Context, toll *domain.Toll) error
	UpdateMany(ctx context.Context, ids []string, assignment TollAssignment) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	DeleteByRental(ctx context.Context, rentalID string) (int64, error)
}

// Store groups the repositories. Work passed to WithinTx sees a Store bound
// to one transaction, committed when fn returns nil and rolled back
// otherwise.
type Store interface {
	Rentals() RentalRepository
	Tolls() TollRepository
	Tickets() TicketRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
