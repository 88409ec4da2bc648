package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
)

const defaultTicketTime = "12:00"

type ticketService struct {
	store repository.Store
}

func NewTicketService(store repository.Store) TicketService {
	return &ticketService{store: store}
}

func (s *ticketService) AddTicket(ctx context.Context, in TicketInput) (*domain.Ticket, error) {
	category, err := domain.ParseTicketCategory(in.Category)
	if err != nil {
		return nil, err
	}
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		RentalID:    in.RentalID,
		IssuedOn:    in.Date,
		Time:        strings.TrimSpace(in.Time),
		Category:    category,
		Location:    strings.TrimSpace(in.Location),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
	}
	if ticket.Time == "" {
		ticket.Time = defaultTicketTime
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		rental, err := tx.Rentals().GetForUpdate(ctx, ticket.RentalID)
		if err != nil {
			return err
		}
		if err := rejectArchived(rental); err != nil {
			return err
		}
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		_, err = applyTotals(ctx, tx, rental)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) DeleteTicket(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, id)
		if err != nil {
			return err
		}
		rental, err := tx.Rentals().GetForUpdate(ctx, ticket.RentalID)
		if err != nil {
			return err
		}
		if err := rejectArchived(rental); err != nil {
			return err
		}
		if err := tx.Tickets().Delete(ctx, id); err != nil {
			return err
		}
		_, err = applyTotals(ctx, tx, rental)
		return err
	})
}

func (s *ticketService) ListTickets(ctx context.Context, rentalID string) ([]*domain.Ticket, error) {
	if _, err := s.store.Rentals().GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	return s.store.Tickets().List(ctx, repository.TicketFilter{RentalID: rentalID})
}
