package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
)

type ticketRepository struct {
	db queryer
}

func NewTicketRepository(db *sql.DB) repository.TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	query := `INSERT INTO tickets (id, rental_id, issued_on, issued_time, category, location, amount, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_on`
	err := r.db.QueryRowContext(ctx, query, t.ID, t.RentalID, t.IssuedOn, t.Time, t.Category, t.Location,
		t.Amount, t.Description, time.Now()).Scan(&t.CreatedOn)
	if err != nil {
		return storageErr("insert ticket", err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	query := `SELECT id, rental_id, issued_on, issued_time, category, location, amount, description, created_on FROM tickets WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.RentalID, &t.IssuedOn, &t.Time, &t.Category,
		&t.Location, &t.Amount, &t.Description, &t.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("ticket", id)
	}
	if err != nil {
		return nil, storageErr("select ticket", err)
	}
	return t, nil
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]*domain.Ticket, error) {
	query := `SELECT id, rental_id, issued_on, issued_time, category, location, amount, description, created_on FROM tickets`
	var args []any
	if filter.RentalID != "" {
		query += ` WHERE rental_id = $1`
		args = append(args, filter.RentalID)
	}
	query += ` ORDER BY issued_on, issued_time, created_on`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list tickets", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t := &domain.Ticket{}
		if err := rows.Scan(&t.ID, &t.RentalID, &t.IssuedOn, &t.Time, &t.Category, &t.Location, &t.Amount,
			&t.Description, &t.CreatedOn); err != nil {
			return nil, storageErr("scan ticket", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list tickets", err)
	}
	return tickets, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete ticket", err)
	}
	return requireRow(res, "ticket", id)
}

func (r *ticketRepository) DeleteByRental(ctx context.Context, rentalID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE rental_id = $1`, rentalID)
	if err != nil {
		return 0, storageErr("delete tickets", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
