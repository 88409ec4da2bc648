package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/repository"
)

const tollColumns = `id, lane_txn_id, transaction_at, location, amount, plate, agency, class, status, rental_id, created_on`

type tollRepository struct {
	db queryer
}

func NewTollRepository(db *sql.DB) repository.TollRepository {
	return &tollRepository{db: db}
}

func scanToll(row rowScanner) (*domain.Toll, error) {
	t := &domain.Toll{}
	err := row.Scan(&t.ID, &t.LaneTxnID, &t.TransactionAt, &t.Location, &t.Amount, &t.Plate, &t.Agency,
		&t.Class, &t.Status, &t.RentalID, &t.CreatedOn)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tollRepository) Create(ctx context.Context, t *domain.Toll) error {
	query := `INSERT INTO tolls (id, lane_txn_id, transaction_at, location, amount, plate, agency, class, status, rental_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_on`
	err := r.db.QueryRowContext(ctx, query, t.ID, t.LaneTxnID, t.TransactionAt, t.Location, t.Amount, t.Plate,
		t.Agency, t.Class, t.Status, t.RentalID, time.Now()).Scan(&t.CreatedOn)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: toll %s already stored", domain.ErrInvalidInput, t.ID)
	}
	if err != nil {
		return storageErr("insert toll", err)
	}
	return nil
}

func (r *tollRepository) GetByID(ctx context.Context, id string) (*domain.Toll, error) {
	t, err := scanToll(r.db.QueryRowContext(ctx, `SELECT `+tollColumns+` FROM tolls WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("toll", id)
	}
	if err != nil {
		return nil, storageErr("select toll", err)
	}
	return t, nil
}

func (r *tollRepository) FindByLaneTxnID(ctx context.Context, laneTxnID string) (*domain.Toll, error) {
	if laneTxnID == "" {
		return nil, notFound("toll lane txn", laneTxnID)
	}
	t, err := scanToll(r.db.QueryRowContext(ctx, `SELECT `+tollColumns+` FROM tolls WHERE lane_txn_id = $1`, laneTxnID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("toll lane txn", laneTxnID)
	}
	if err != nil {
		return nil, storageErr("select toll", err)
	}
	return t, nil
}

func (r *tollRepository) List(ctx context.Context, filter repository.TollFilter) ([]*domain.Toll, error) {
	query := `SELECT ` + tollColumns + ` FROM tolls WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.RentalID != "" {
		args = append(args, filter.RentalID)
		query += fmt.Sprintf(" AND rental_id = $%d", len(args))
	}
	query += " ORDER BY transaction_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list tolls", err)
	}
	defer rows.Close()

	var tolls []*domain.Toll
	for rows.Next() {
		t, err := scanToll(rows)
		if err != nil {
			return nil, storageErr("scan toll", err)
		}
		tolls = append(tolls, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list tolls", err)
	}
	return tolls, nil
}

func (r *tollRepository) Update(ctx context.Context, t *domain.Toll) error {
	query := `UPDATE tolls SET lane_txn_id=$1, transaction_at=$2, location=$3, amount=$4, plate=$5, agency=$6, class=$7, status=$8, rental_id=$9 WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query, t.LaneTxnID, t.TransactionAt, t.Location, t.Amount, t.Plate,
		t.Agency, t.Class, t.Status, t.RentalID, t.ID)
	if err != nil {
		return storageErr("update toll", err)
	}
	return requireRow(res, "toll", t.ID)
}

func (r *tollRepository) UpdateMany(ctx context.Context, ids []string, a repository.TollAssignment) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	logger.EnterMethod("tollRepository.UpdateMany", "count", len(ids), "status", a.Status())

	query := `UPDATE tolls SET status = $1, rental_id = $2 WHERE id = ANY($3)`
	res, err := r.db.ExecContext(ctx, query, a.Status(), a.RentalID, pq.Array(ids))
	if err != nil {
		logger.ExitMethodWithError("tollRepository.UpdateMany", err)
		return 0, storageErr("assign tolls", err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("tollRepository.UpdateMany", n, nil)
	return n, nil
}

func (r *tollRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tolls WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete toll", err)
	}
	return requireRow(res, "toll", id)
}

func (r *tollRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tolls`)
	if err != nil {
		return 0, storageErr("delete tolls", err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("tollRepository.DeleteAll", n, nil)
	return n, nil
}
