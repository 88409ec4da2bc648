package migration

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitTables, downInitTables)
}

func upInitTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE rentals (
			id TEXT PRIMARY KEY,
			renter_name VARCHAR(255) NOT NULL,
			car_model VARCHAR(255) NOT NULL DEFAULT '',
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			total_tolls NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_tickets NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'archived')),
			created_on TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_on TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_rentals_status_window ON rentals(status, start_date, end_date);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_rentals_renter_name ON rentals(renter_name);`)
	if err != nil {
		return err
	}

	// Provider text columns are unbounded.
	// rental_id loses its value when the rental goes away; the service
	// flips the status back to Unmatched in the same transaction.
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE tolls (
			id TEXT PRIMARY KEY,
			lane_txn_id TEXT NOT NULL DEFAULT '',
			transaction_at TIMESTAMPTZ NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			amount NUMERIC(12,2) NOT NULL,
			plate TEXT NOT NULL DEFAULT '',
			agency TEXT NOT NULL DEFAULT '',
			class TEXT NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL CHECK (status IN ('Matched', 'Unmatched')),
			rental_id TEXT,
			created_on TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_tolls_rental
				FOREIGN KEY(rental_id)
				REFERENCES rentals(id)
				ON DELETE SET NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE UNIQUE INDEX uq_tolls_lane_txn_id ON tolls(lane_txn_id) WHERE lane_txn_id <> '';`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_tolls_rental_id ON tolls(rental_id);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_tolls_unmatched_at ON tolls(transaction_at) WHERE rental_id IS NULL;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE tickets (
			id TEXT PRIMARY KEY,
			rental_id TEXT NOT NULL,
			issued_on DATE NOT NULL,
			issued_time VARCHAR(8) NOT NULL DEFAULT '',
			category VARCHAR(32) NOT NULL CHECK (category IN ('Parking', 'Speeding', 'Red Light', 'Other')),
			location VARCHAR(255) NOT NULL DEFAULT '',
			amount NUMERIC(12,2) NOT NULL CHECK (amount >= 0),
			description TEXT NOT NULL DEFAULT '',
			created_on TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_tickets_rental
				FOREIGN KEY(rental_id)
				REFERENCES rentals(id)
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_tickets_rental_id ON tickets(rental_id);`)
	return err
}

func downInitTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"tickets", "tolls", "rentals"} {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+table+`;`); err != nil {
			return err
		}
	}
	return nil
}
