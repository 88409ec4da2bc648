package memory

import (
	"context"
	"fmt"
	"time"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
)

type tollRepository struct {
	s *Store
}

func (r *tollRepository) Create(ctx context.Context, t *domain.Toll) error {
	defer r.s.lock()()
	st := r.s.db.st
	if _, ok := st.tolls[t.ID]; ok {
		return fmt.Errorf("%w: toll %s already stored", domain.ErrInvalidInput, t.ID)
	}
	if t.LaneTxnID != "" {
		for _, existing := range st.tolls {
			if existing.LaneTxnID == t.LaneTxnID {
				return fmt.Errorf("%w: toll %s already stored", domain.ErrInvalidInput, t.LaneTxnID)
			}
		}
	}
	t.CreatedOn = time.Now()
	st.tolls[t.ID] = copyToll(t)
	return nil
}

func (r *tollRepository) GetByID(ctx context.Context, id string) (*domain.Toll, error) {
	defer r.s.lock()()
	t, ok := r.s.db.st.tolls[id]
	if !ok {
		return nil, notFound("toll", id)
	}
	return copyToll(t), nil
}

func (r *tollRepository) FindByLaneTxnID(ctx context.Context, laneTxnID string) (*domain.Toll, error) {
	defer r.s.lock()()
	if laneTxnID != "" {
		for _, t := range r.s.db.st.tolls {
			if t.LaneTxnID == laneTxnID {
				return copyToll(t), nil
			}
		}
	}
	return nil, notFound("toll lane txn", laneTxnID)
}

func (r *tollRepository) List(ctx context.Context, filter repository.TollFilter) ([]*domain.Toll, error) {
	defer r.s.lock()()
	var out []*domain.Toll
	for _, t := range r.s.db.st.tolls {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.RentalID != "" && (t.RentalID == nil || *t.RentalID != filter.RentalID) {
			continue
		}
		out = append(out, copyToll(t))
	}
	sortTolls(out)
	return out, nil
}

func (r *tollRepository) Update(ctx context.Context, t *domain.Toll) error {
	defer r.s.lock()()
	st := r.s.db.st
	existing, ok := st.tolls[t.ID]
	if !ok {
		return notFound("toll", t.ID)
	}
	c := copyToll(t)
	c.CreatedOn = existing.CreatedOn
	st.tolls[t.ID] = c
	return nil
}

func (r *tollRepository) UpdateMany(ctx context.Context, ids []string, a repository.TollAssignment) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, id := range ids {
		t, ok := r.s.db.st.tolls[id]
		if !ok {
			continue
		}
		if a.RentalID == nil {
			t.Detach()
		} else {
			t.Attach(*a.RentalID)
		}
		n++
	}
	return n, nil
}

func (r *tollRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.db.st.tolls[id]; !ok {
		return notFound("toll", id)
	}
	delete(r.s.db.st.tolls, id)
	return nil
}

func (r *tollRepository) DeleteAll(ctx context.Context) (int64, error) {
	defer r.s.lock()()
	n := int64(len(r.s.db.st.tolls))
	r.s.db.st.tolls = make(map[string]*domain.Toll)
	return n, nil
}
