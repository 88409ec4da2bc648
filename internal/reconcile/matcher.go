package reconcile

import (
	"time"

	"rentaltoll-backend/internal/domain"
)

// Match is the matcher's decision for one toll. Rental is nil when no active
// rental covers the toll timestamp.
type Match struct {
	Toll       *domain.Toll
	Rental     *domain.Rental
	Candidates int
}

func (m Match) Ambiguous() bool {
	return m.Candidates > 1
}

// FindRental returns the active rental covering at, and how many active
// rentals covered it. Overlaps resolve to the latest start date, then the
// latest creation time, then the greatest id.
func FindRental(rentals []*domain.Rental, at time.Time) (*domain.Rental, int) {
	var best *domain.Rental
	count := 0
	for _, r := range rentals {
		if r.IsArchived() || !r.Covers(at) {
			continue
		}
		count++
		if best == nil || preferred(r, best) {
			best = r
		}
	}
	return best, count
}

func preferred(a, b *domain.Rental) bool {
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	if !a.CreatedOn.Equal(b.CreatedOn) {
		return a.CreatedOn.After(b.CreatedOn)
	}
	return a.ID > b.ID
}

// MatchTolls decides a rental for every toll, in input order.
func MatchTolls(tolls []*domain.Toll, rentals []*domain.Rental) []Match {
	out := make([]Match, 0, len(tolls))
	for _, t := range tolls {
		r, n := FindRental(rentals, t.TransactionAt)
		out = append(out, Match{Toll: t, Rental: r, Candidates: n})
	}
	return out
}

// ResolveRetroactive picks the unmatched tolls that fall inside rental's
// window.
func ResolveRetroactive(rental *domain.Rental, unmatched []*domain.Toll) []*domain.Toll {
	var hits []*domain.Toll
	for _, t := range unmatched {
		if t.IsMatched() {
			continue
		}
		if rental.Covers(t.TransactionAt) {
			hits = append(hits, t)
		}
	}
	return hits
}
