// Package app wires configuration into a running store and service set for
// the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/migration"
	"rentaltoll-backend/internal/repository"
	"rentaltoll-backend/internal/repository/memory"
	"rentaltoll-backend/internal/repository/postgres"
	"rentaltoll-backend/internal/service"
)

// Services is the full service set built over one store.
type Services struct {
	Rentals service.RentalService
	Tolls   service.TollService
	Tickets service.TicketService
	Ledger  service.LedgerService
}

func NewServices(store repository.Store, cfg *config.Config) *Services {
	return &Services{
		Rentals: service.NewRentalService(store),
		Tolls:   service.NewTollService(store, cfg.ImportLocation()),
		Tickets: service.NewTicketService(store),
		Ledger:  service.NewLedgerService(store),
	}
}

// OpenStore connects the configured store. The returned close func releases
// the database handle, if any.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, func() error, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on exit")
		return memory.NewStore(), func() error { return nil }, nil
	}

	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.MigrateOnStart {
		logger.Info("Applying migrations", "dir", cfg.Database.MigrationsDir)
		if err := migration.Up(ctx, db, cfg.Database.MigrationsDir); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
	}
	return postgres.NewStore(db), db.Close, nil
}

// OpenDB opens and pings the PostgreSQL database.
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logger.Info("Connecting to database...",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Database,
		"user", cfg.Database.User)

	db, err := sql.Open("postgres", cfg.DatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")
	return db, nil
}
