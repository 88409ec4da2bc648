package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/repository"
)

const rentalColumns = `id, renter_name, car_model, start_date, end_date, amount, total_tolls, total_tickets, total_paid, status, created_on, updated_on`

type rentalRepository struct {
	db queryer
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(&rt.ID, &rt.RenterName, &rt.CarModel, &rt.StartDate, &rt.EndDate, &rt.Amount,
		&rt.TotalTolls, &rt.TotalTickets, &rt.TotalPaid, &rt.Status, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "rentalID", rt.ID, "renter", rt.RenterName)

	query := `INSERT INTO rentals (id, renter_name, car_model, start_date, end_date, amount, total_tolls, total_tickets, total_paid, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING created_on`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, rt.ID, rt.RenterName, rt.CarModel, rt.StartDate, rt.EndDate, rt.Amount,
		rt.TotalTolls, rt.TotalTickets, rt.TotalPaid, rt.Status, now, now).Scan(&rt.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "rentalID", rt.ID)
		return storageErr("insert rental", err)
	}
	rt.UpdatedOn = rt.CreatedOn

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *rentalRepository) GetForUpdate(ctx context.Context, id string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

func (r *rentalRepository) get(ctx context.Context, query, id string) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("rental", id)
	}
	if err != nil {
		return nil, storageErr("select rental", err)
	}
	return rt, nil
}

func (r *rentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.RenterName != "" {
		args = append(args, filter.RenterName)
		query += fmt.Sprintf(" AND renter_name = $%d", len(args))
	}
	query += " ORDER BY start_date DESC, created_on DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list rentals", err)
	}
	defer rows.Close()

	var rentals []*domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, storageErr("scan rental", err)
		}
		rentals = append(rentals, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list rentals", err)
	}
	return rentals, nil
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET renter_name=$1, car_model=$2, start_date=$3, end_date=$4, amount=$5,
	          total_tolls=$6, total_tickets=$7, total_paid=$8, status=$9, updated_on=$10 WHERE id=$11`
	rt.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, rt.RenterName, rt.CarModel, rt.StartDate, rt.EndDate, rt.Amount,
		rt.TotalTolls, rt.TotalTickets, rt.TotalPaid, rt.Status, rt.UpdatedOn, rt.ID)
	if err != nil {
		return storageErr("update rental", err)
	}
	return requireRow(res, "rental", rt.ID)
}

func (r *rentalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete rental", err)
	}
	return requireRow(res, "rental", id)
}
