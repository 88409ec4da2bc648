package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/reconcile"
	"rentaltoll-backend/internal/repository"
)

type rentalService struct {
	store repository.Store
}

func NewRentalService(store repository.Store) RentalService {
	return &rentalService{store: store}
}

func (s *rentalService) CreateRental(ctx context.Context, in RentalInput) (*domain.Rental, int, error) {
	rental := &domain.Rental{
		ID:         uuid.NewString(),
		RenterName: strings.TrimSpace(in.RenterName),
		CarModel:   strings.TrimSpace(in.CarModel),
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Amount:     in.Amount,
		TotalPaid:  in.TotalPaid,
		Status:     domain.RentalStatusActive,
	}
	if err := validateRental(rental); err != nil {
		return nil, 0, err
	}

	resolved := 0
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Rentals().Create(ctx, rental); err != nil {
			return err
		}
		n, err := resolveRetroactive(ctx, tx, rental)
		if err != nil {
			return err
		}
		resolved = n
		_, err = applyTotals(ctx, tx, rental)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	logger.Info("Rental created", "rentalID", rental.ID, "renter", rental.RenterName, "resolvedTolls", resolved)
	return rental, resolved, nil
}

// resolveRetroactive attaches the unmatched tolls that fall inside the
// rental window.
func resolveRetroactive(ctx context.Context, tx repository.Store, rental *domain.Rental) (int, error) {
	unmatched, err := tx.Tolls().List(ctx, repository.TollFilter{Status: domain.TollStatusUnmatched})
	if err != nil {
		return 0, err
	}
	hits := reconcile.ResolveRetroactive(rental, unmatched)
	if len(hits) == 0 {
		return 0, nil
	}
	ids := make([]string, len(hits))
	for i, t := range hits {
		ids[i] = t.ID
	}
	rentalID := rental.ID
	if _, err := tx.Tolls().UpdateMany(ctx, ids, repository.TollAssignment{RentalID: &rentalID}); err != nil {
		return 0, err
	}
	return len(hits), nil
}

func (s *rentalService) GetRental(ctx context.Context, id string) (*domain.RentalDetail, error) {
	rental, err := s.store.Rentals().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return loadDetail(ctx, s.store, rental)
}

func (s *rentalService) ListRentals(ctx context.Context, status domain.RentalStatus) ([]*domain.Rental, error) {
	return s.store.Rentals().List(ctx, repository.RentalFilter{Status: status})
}

func (s *rentalService) UpdateRental(ctx context.Context, id string, patch RentalPatch) (*domain.Rental, error) {
	var updated *domain.Rental
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		rental, err := tx.Rentals().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		log := logger.WithRental(id)
		before := *rental
		applyRentalPatch(rental, patch)

		changes, err := diffRental(&before, rental)
		if err != nil {
			return err
		}
		updated = rental
		if len(changes) == 0 {
			return nil
		}
		if rental.IsArchived() && changes.touches(fieldAmount, fieldTotalPaid, fieldStartDate, fieldEndDate) {
			return rejectArchived(rental)
		}
		if err := validateRental(rental); err != nil {
			return err
		}
		if err := tx.Rentals().Update(ctx, rental); err != nil {
			return err
		}

		if !rental.IsArchived() && changes.touches(fieldStartDate, fieldEndDate) {
			n, err := resolveRetroactive(ctx, tx, rental)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("Rental window change pulled in unmatched tolls", "count", n)
			}
		}
		if _, err := applyTotals(ctx, tx, rental); err != nil {
			return err
		}
		log.Info("Rental updated", "fields", changes.fields())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyRentalPatch(r *domain.Rental, p RentalPatch) {
	if p.RenterName != nil {
		r.RenterName = strings.TrimSpace(*p.RenterName)
	}
	if p.CarModel != nil {
		r.CarModel = strings.TrimSpace(*p.CarModel)
	}
	if p.StartDate != nil {
		r.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		r.EndDate = *p.EndDate
	}
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.TotalPaid != nil {
		r.TotalPaid = *p.TotalPaid
	}
}

// DeleteRental returns the rental's tolls to the unmatched holding set and
// removes its tickets.
func (s *rentalService) DeleteRental(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Rentals().GetForUpdate(ctx, id); err != nil {
			return err
		}
		tolls, err := tx.Tolls().List(ctx, repository.TollFilter{RentalID: id})
		if err != nil {
			return err
		}
		if len(tolls) > 0 {
			ids := make([]string, len(tolls))
			for i, t := range tolls {
				ids[i] = t.ID
			}
			if _, err := tx.Tolls().UpdateMany(ctx, ids, repository.TollAssignment{}); err != nil {
				return err
			}
		}
		tickets, err := tx.Tickets().DeleteByRental(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Rentals().Delete(ctx, id); err != nil {
			return err
		}
		logger.Info("Rental deleted", "rentalID", id, "detachedTolls", len(tolls), "deletedTickets", tickets)
		return nil
	})
}

func (s *rentalService) ArchiveRental(ctx context.Context, id string) (*domain.Rental, error) {
	var rental *domain.Rental
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		rental, err = tx.Rentals().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return archive(ctx, tx, rental)
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

// ArchiveStatement settles every active rental of the renter and reports
// how many were archived.
func (s *rentalService) ArchiveStatement(ctx context.Context, renterName string) (int, error) {
	count := 0
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		rentals, err := tx.Rentals().List(ctx, repository.RentalFilter{
			Status:     domain.RentalStatusActive,
			RenterName: renterName,
		})
		if err != nil {
			return err
		}
		sort.Slice(rentals, func(i, j int) bool { return rentals[i].ID < rentals[j].ID })
		for _, r := range rentals {
			locked, err := tx.Rentals().GetForUpdate(ctx, r.ID)
			if err != nil {
				return err
			}
			if err := archive(ctx, tx, locked); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Statement archived", "renter", renterName, "rentals", count)
	return count, nil
}

// archive snapshots the rental as fully paid.
func archive(ctx context.Context, tx repository.Store, rental *domain.Rental) error {
	if err := rejectArchived(rental); err != nil {
		return err
	}
	tolls, err := tx.Tolls().List(ctx, repository.TollFilter{RentalID: rental.ID})
	if err != nil {
		return err
	}
	tickets, err := tx.Tickets().List(ctx, repository.TicketFilter{RentalID: rental.ID})
	if err != nil {
		return err
	}
	reconcile.ApplyTotals(rental, tolls, tickets)
	rental.TotalPaid = rental.TotalCost()
	rental.Status = domain.RentalStatusArchived
	return tx.Rentals().Update(ctx, rental)
}

func validateRental(r *domain.Rental) error {
	if r.RenterName == "" {
		return fmt.Errorf("%w: renter name is required", domain.ErrInvalidInput)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidInput)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidInput)
	}
	if r.TotalPaid.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: total paid must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
