package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/reconcile"
	"rentaltoll-backend/internal/repository"
)

type tollService struct {
	store    repository.Store
	location *time.Location
}

// NewTollService builds the toll service. Provider timestamps are read in
// loc; nil means UTC.
func NewTollService(store repository.Store, loc *time.Location) TollService {
	if loc == nil {
		loc = time.UTC
	}
	return &tollService{store: store, location: loc}
}

func (s *tollService) ImportTolls(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parsed, err := reconcile.ParseTollCSV(r, s.location)
	if err != nil {
		return nil, err
	}
	for _, row := range parsed.Skipped {
		logger.Warn("Skipping toll row", "line", row.Line, "reason", row.Reason)
	}

	result := &ImportResult{
		Parsed:   len(parsed.Tolls),
		Payments: parsed.Payments,
		Skipped:  parsed.Skipped,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		stored, err := tx.Tolls().List(ctx, repository.TollFilter{})
		if err != nil {
			return err
		}
		unique, dups := reconcile.FilterDuplicates(parsed.Tolls, reconcile.NewLaneSet(stored))
		result.Duplicates = len(dups)

		rentals, err := tx.Rentals().List(ctx, repository.RentalFilter{Status: domain.RentalStatusActive})
		if err != nil {
			return err
		}

		touched := make(map[string]struct{})
		for _, m := range reconcile.MatchTolls(unique, rentals) {
			if m.Rental != nil {
				m.Toll.Attach(m.Rental.ID)
				touched[m.Rental.ID] = struct{}{}
				result.Matched++
				if m.Ambiguous() {
					result.Ambiguous = append(result.Ambiguous, AmbiguousMatch{
						TollID: m.Toll.ID, RentalID: m.Rental.ID, Candidates: m.Candidates,
					})
					logger.Warn("Toll overlaps several rentals", "tollID", m.Toll.ID, "chosenRental", m.Rental.ID, "candidates", m.Candidates)
				}
			} else {
				m.Toll.Detach()
				result.Unmatched++
			}
			if err := tx.Tolls().Create(ctx, m.Toll); err != nil {
				return err
			}
		}
		return recomputeAll(ctx, tx, touched)
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Matched %d tolls. Saved %d unmatched tolls for future rentals.", result.Matched, result.Unmatched)
	logger.Info("Toll import completed",
		"parsed", result.Parsed, "duplicates", result.Duplicates, "skipped", len(result.Skipped),
		"matched", result.Matched, "unmatched", result.Unmatched, "ambiguous", len(result.Ambiguous))
	return result, nil
}

// ApplyBulkMatch appends pre-matched tolls to rentals. Totals move by the
// sum of the tolls actually added, duplicates are skipped.
func (s *tollService) ApplyBulkMatch(ctx context.Context, batch map[string]BulkMatchEntry) (*BulkMatchResult, error) {
	result := &BulkMatchResult{Added: make(map[string]int, len(batch))}

	rentalIDs := make([]string, 0, len(batch))
	for id := range batch {
		rentalIDs = append(rentalIDs, id)
	}
	sort.Strings(rentalIDs)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		stored, err := tx.Tolls().List(ctx, repository.TollFilter{})
		if err != nil {
			return err
		}
		seen := reconcile.NewLaneSet(stored)

		for _, rentalID := range rentalIDs {
			rental, err := tx.Rentals().GetForUpdate(ctx, rentalID)
			if err != nil {
				return err
			}
			if err := rejectArchived(rental); err != nil {
				return err
			}

			unique, dups := reconcile.FilterDuplicates(batch[rentalID].Tolls, seen)
			result.Duplicates += len(dups)
			for _, t := range unique {
				if t.ID == "" {
					t.ID = t.LaneTxnID
				}
				if t.ID == "" {
					t.ID = uuid.NewString()
				}
				t.Attach(rental.ID)
				if err := tx.Tolls().Create(ctx, t); err != nil {
					return err
				}
			}
			if len(unique) == 0 {
				continue
			}
			rental.TotalTolls = rental.TotalTolls.Add(reconcile.SumTolls(unique))
			if err := tx.Rentals().Update(ctx, rental); err != nil {
				return err
			}
			result.Added[rentalID] = len(unique)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *tollService) AddToll(ctx context.Context, in TollInput) (*domain.Toll, bool, error) {
	if in.TransactionAt.IsZero() {
		return nil, false, fmt.Errorf("%w: toll date is required", domain.ErrInvalidInput)
	}
	toll := &domain.Toll{
		ID:            strings.TrimSpace(in.LaneTxnID),
		LaneTxnID:     strings.TrimSpace(in.LaneTxnID),
		TransactionAt: in.TransactionAt,
		Location:      strings.TrimSpace(in.Location),
		Amount:        in.Amount,
		Plate:         in.Plate,
		Agency:        in.Agency,
		Class:         in.Class,
		Status:        domain.TollStatusUnmatched,
	}
	if toll.ID == "" {
		toll.ID = uuid.NewString()
	}

	var (
		result  *domain.Toll
		created bool
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if toll.LaneTxnID != "" {
			existing, err := tx.Tolls().FindByLaneTxnID(ctx, toll.LaneTxnID)
			if err == nil {
				result = existing
				return nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		if in.RentalID != "" {
			rental, err := tx.Rentals().GetForUpdate(ctx, in.RentalID)
			if err != nil {
				return err
			}
			if err := rejectArchived(rental); err != nil {
				return err
			}
			toll.Attach(rental.ID)
		} else {
			rentals, err := tx.Rentals().List(ctx, repository.RentalFilter{Status: domain.RentalStatusActive})
			if err != nil {
				return err
			}
			if r, n := reconcile.FindRental(rentals, toll.TransactionAt); r != nil {
				toll.Attach(r.ID)
				if n > 1 {
					logger.Warn("Toll overlaps several rentals", "tollID", toll.ID, "chosenRental", r.ID, "candidates", n)
				}
			}
		}

		if err := tx.Tolls().Create(ctx, toll); err != nil {
			return err
		}
		result, created = toll, true
		if toll.IsMatched() {
			_, err := recomputeRental(ctx, tx, *toll.RentalID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

func (s *tollService) UpdateToll(ctx context.Context, id string, patch TollPatch) (*domain.Toll, error) {
	var toll *domain.Toll
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		toll, err = tx.Tolls().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := guardOwner(ctx, tx, toll); err != nil {
			return err
		}

		if patch.TransactionAt != nil {
			toll.TransactionAt = *patch.TransactionAt
		}
		if patch.Location != nil {
			toll.Location = strings.TrimSpace(*patch.Location)
		}
		if patch.Amount != nil {
			toll.Amount = *patch.Amount
		}
		if patch.Plate != nil {
			toll.Plate = *patch.Plate
		}
		if err := tx.Tolls().Update(ctx, toll); err != nil {
			return err
		}
		if toll.IsMatched() {
			_, err = recomputeRental(ctx, tx, *toll.RentalID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return toll, nil
}

func (s *tollService) DeleteToll(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		toll, err := tx.Tolls().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := guardOwner(ctx, tx, toll); err != nil {
			return err
		}
		if err := tx.Tolls().Delete(ctx, id); err != nil {
			return err
		}
		if toll.IsMatched() {
			_, err = recomputeRental(ctx, tx, *toll.RentalID)
		}
		return err
	})
}

// DeleteAllTolls empties the toll set, matched and unmatched, and zeroes
// every rental's toll total, archived rentals included.
func (s *tollService) DeleteAllTolls(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		matched, err := tx.Tolls().List(ctx, repository.TollFilter{Status: domain.TollStatusMatched})
		if err != nil {
			return err
		}
		touched := make(map[string]struct{})
		for _, t := range matched {
			if t.IsMatched() {
				touched[*t.RentalID] = struct{}{}
			}
		}
		deleted, err = tx.Tolls().DeleteAll(ctx)
		if err != nil {
			return err
		}
		return recomputeAll(ctx, tx, touched)
	})
	if err != nil {
		return 0, err
	}
	logger.Info("All tolls deleted", "count", deleted)
	return deleted, nil
}

func (s *tollService) ClearRentalTolls(ctx context.Context, rentalID string) (int, error) {
	count := 0
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		rental, err := tx.Rentals().GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if err := rejectArchived(rental); err != nil {
			return err
		}
		tolls, err := tx.Tolls().List(ctx, repository.TollFilter{RentalID: rentalID})
		if err != nil {
			return err
		}
		for _, t := range tolls {
			if err := tx.Tolls().Delete(ctx, t.ID); err != nil {
				return err
			}
		}
		count = len(tolls)
		_, err = applyTotals(ctx, tx, rental)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AssignToll moves a toll onto the chosen rental, detaching it from any
// previous one.
func (s *tollService) AssignToll(ctx context.Context, tollID, rentalID string) (*domain.Toll, error) {
	var toll *domain.Toll
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		toll, err = tx.Tolls().GetByID(ctx, tollID)
		if err != nil {
			return err
		}
		if toll.IsMatched() && *toll.RentalID == rentalID {
			return nil
		}
		if err := guardOwner(ctx, tx, toll); err != nil {
			return err
		}
		target, err := tx.Rentals().GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if err := rejectArchived(target); err != nil {
			return err
		}

		touched := map[string]struct{}{rentalID: {}}
		if toll.IsMatched() {
			touched[*toll.RentalID] = struct{}{}
		}
		toll.Attach(rentalID)
		if err := tx.Tolls().Update(ctx, toll); err != nil {
			return err
		}
		return recomputeAll(ctx, tx, touched)
	})
	if err != nil {
		return nil, err
	}
	return toll, nil
}

func (s *tollService) UnassignToll(ctx context.Context, tollID string) (*domain.Toll, error) {
	var toll *domain.Toll
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		toll, err = tx.Tolls().GetByID(ctx, tollID)
		if err != nil {
			return err
		}
		if !toll.IsMatched() {
			return nil
		}
		if err := guardOwner(ctx, tx, toll); err != nil {
			return err
		}
		previous := *toll.RentalID
		toll.Detach()
		if err := tx.Tolls().Update(ctx, toll); err != nil {
			return err
		}
		_, err = recomputeRental(ctx, tx, previous)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toll, nil
}

// ListTolls returns tolls newest first, matched tolls carrying the renter
// they were billed to.
func (s *tollService) ListTolls(ctx context.Context, filter repository.TollFilter) ([]domain.TollView, error) {
	tolls, err := s.store.Tolls().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	rentals, err := s.store.Rentals().List(ctx, repository.RentalFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(rentals))
	for _, r := range rentals {
		names[r.ID] = r.RenterName
	}

	views := make([]domain.TollView, 0, len(tolls))
	for _, t := range tolls {
		v := domain.TollView{Toll: *t}
		if t.IsMatched() {
			v.RenterName = names[*t.RentalID]
		}
		views = append(views, v)
	}
	return views, nil
}

// RematchUnmatched runs the matcher over the holding set again, picking up
// rentals created or moved since the tolls were imported.
func (s *tollService) RematchUnmatched(ctx context.Context) (*RematchResult, error) {
	result := &RematchResult{}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		unmatched, err := tx.Tolls().List(ctx, repository.TollFilter{Status: domain.TollStatusUnmatched})
		if err != nil {
			return err
		}
		result.Examined = len(unmatched)
		if len(unmatched) == 0 {
			return nil
		}
		rentals, err := tx.Rentals().List(ctx, repository.RentalFilter{Status: domain.RentalStatusActive})
		if err != nil {
			return err
		}

		byRental := make(map[string][]string)
		for _, m := range reconcile.MatchTolls(unmatched, rentals) {
			if m.Rental == nil {
				continue
			}
			byRental[m.Rental.ID] = append(byRental[m.Rental.ID], m.Toll.ID)
			if m.Ambiguous() {
				result.Ambiguous = append(result.Ambiguous, AmbiguousMatch{
					TollID: m.Toll.ID, RentalID: m.Rental.ID, Candidates: m.Candidates,
				})
			}
		}

		touched := make(map[string]struct{}, len(byRental))
		for rentalID, ids := range byRental {
			id := rentalID
			n, err := tx.Tolls().UpdateMany(ctx, ids, repository.TollAssignment{RentalID: &id})
			if err != nil {
				return err
			}
			result.Matched += int(n)
			touched[rentalID] = struct{}{}
		}
		return recomputeAll(ctx, tx, touched)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// guardOwner rejects changes to a toll billed to an archived rental.
func guardOwner(ctx context.Context, tx repository.Store, toll *domain.Toll) error {
	if !toll.IsMatched() {
		return nil
	}
	owner, err := tx.Rentals().GetForUpdate(ctx, *toll.RentalID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return rejectArchived(owner)
}
