package reconcile

import "rentaltoll-backend/internal/domain"

// LaneSet is the set of provider lane transaction ids already stored.
type LaneSet map[string]struct{}

func NewLaneSet(tolls []*domain.Toll) LaneSet {
	set := make(LaneSet, len(tolls))
	for _, t := range tolls {
		set.Add(t.LaneTxnID)
	}
	return set
}

func (s LaneSet) Add(laneTxnID string) {
	if laneTxnID != "" {
		s[laneTxnID] = struct{}{}
	}
}

func (s LaneSet) Contains(laneTxnID string) bool {
	if laneTxnID == "" {
		return false
	}
	_, ok := s[laneTxnID]
	return ok
}

// FilterDuplicates splits incoming into tolls not yet known and duplicates.
// Tolls without a lane txn id are always unique. Accepted ids are added to
// seen, so a repeated id inside the same batch keeps only its first row.
func FilterDuplicates(incoming []*domain.Toll, seen LaneSet) (unique, duplicates []*domain.Toll) {
	for _, t := range incoming {
		if seen.Contains(t.LaneTxnID) {
			duplicates = append(duplicates, t)
			continue
		}
		seen.Add(t.LaneTxnID)
		unique = append(unique, t)
	}
	return unique, duplicates
}
