package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db      *sql.DB
	inTx    bool
	rentals repository.RentalRepository
	tolls   repository.TollRepository
	tickets repository.TicketRepository
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return newStore(db, db, false)
}

func newStore(db *sql.DB, q queryer, inTx bool) *Store {
	return &Store{
		db:      db,
		inTx:    inTx,
		rentals: &rentalRepository{db: q},
		tolls:   &tollRepository{db: q},
		tickets: &ticketRepository{db: q},
	}
}

func (s *Store) Rentals() repository.RentalRepository { return s.rentals }
func (s *Store) Tolls() repository.TollRepository     { return s.tolls }
func (s *Store) Tickets() repository.TicketRepository { return s.tickets }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn in a single database transaction. Nested calls join the
// outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(s.db, tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

// requireRow turns a zero-row write into ErrNotFound.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("rows affected", err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
