package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/reconcile"
	"rentaltoll-backend/internal/repository"
)

type ledgerService struct {
	store repository.Store
}

func NewLedgerService(store repository.Store) LedgerService {
	return &ledgerService{store: store}
}

func (s *ledgerService) Recompute(ctx context.Context, rentalID string) (*domain.Rental, error) {
	var rental *domain.Rental
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		rental, err = recomputeRental(ctx, tx, rentalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

func (s *ledgerService) ListRenters(ctx context.Context) ([]domain.RenterSummary, error) {
	rentals, err := s.store.Rentals().List(ctx, repository.RentalFilter{Status: domain.RentalStatusActive})
	if err != nil {
		return nil, err
	}
	return reconcile.SummarizeRenters(rentals), nil
}

func (s *ledgerService) GetStatement(ctx context.Context, renterName string) (*domain.Statement, error) {
	rentals, err := s.store.Rentals().List(ctx, repository.RentalFilter{
		Status:     domain.RentalStatusActive,
		RenterName: renterName,
	})
	if err != nil {
		return nil, err
	}
	summary, ok := reconcile.SummarizeRenter(renterName, rentals)
	if !ok {
		return nil, fmt.Errorf("renter %q: %w", renterName, domain.ErrNotFound)
	}

	sort.Slice(rentals, func(i, j int) bool { return rentals[i].StartDate.Before(rentals[j].StartDate) })

	stmt := &domain.Statement{RenterSummary: summary}
	for _, r := range rentals {
		detail, err := loadDetail(ctx, s.store, r)
		if err != nil {
			return nil, err
		}
		stmt.Rentals = append(stmt.Rentals, *detail)
	}
	return stmt, nil
}

func (s *ledgerService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	rentals, err := s.store.Rentals().List(ctx, repository.RentalFilter{})
	if err != nil {
		return nil, err
	}
	d := reconcile.BuildDashboard(rentals)
	return &d, nil
}

// OutstandingRenters lists renters whose active balance exceeds threshold.
func (s *ledgerService) OutstandingRenters(ctx context.Context, threshold decimal.Decimal) ([]domain.RenterSummary, error) {
	summaries, err := s.ListRenters(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.RenterSummary
	for _, sm := range summaries {
		if sm.Balance.GreaterThan(threshold) {
			out = append(out, sm)
		}
	}
	return out, nil
}

// recomputeRental reloads the attached tolls and tickets of a rental and
// persists its derived totals. Callers run it inside a transaction.
func recomputeRental(ctx context.Context, tx repository.Store, rentalID string) (*domain.Rental, error) {
	rental, err := tx.Rentals().GetForUpdate(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if _, err := applyTotals(ctx, tx, rental); err != nil {
		return nil, err
	}
	return rental, nil
}

// applyTotals is recomputeRental for a rental the caller already holds.
func applyTotals(ctx context.Context, tx repository.Store, rental *domain.Rental) (bool, error) {
	tolls, err := tx.Tolls().List(ctx, repository.TollFilter{RentalID: rental.ID})
	if err != nil {
		return false, err
	}
	tickets, err := tx.Tickets().List(ctx, repository.TicketFilter{RentalID: rental.ID})
	if err != nil {
		return false, err
	}
	if !reconcile.ApplyTotals(rental, tolls, tickets) {
		return false, nil
	}
	if err := tx.Rentals().Update(ctx, rental); err != nil {
		return false, err
	}
	return true, nil
}

func recomputeAll(ctx context.Context, tx repository.Store, rentalIDs map[string]struct{}) error {
	ids := make([]string, 0, len(rentalIDs))
	for id := range rentalIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := recomputeRental(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

func loadDetail(ctx context.Context, store repository.Store, rental *domain.Rental) (*domain.RentalDetail, error) {
	tolls, err := store.Tolls().List(ctx, repository.TollFilter{RentalID: rental.ID})
	if err != nil {
		return nil, err
	}
	tickets, err := store.Tickets().List(ctx, repository.TicketFilter{RentalID: rental.ID})
	if err != nil {
		return nil, err
	}
	return &domain.RentalDetail{Rental: rental, Tolls: tolls, Tickets: tickets}, nil
}

func rejectArchived(rental *domain.Rental) error {
	if rental.IsArchived() {
		return fmt.Errorf("rental %s: %w", rental.ID, domain.ErrRentalArchived)
	}
	return nil
}
