package service

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/reconcile"
	"rentaltoll-backend/internal/repository"
)

type RentalService interface {
	// CreateRental stores the rental and attaches every unmatched toll inside
	// its window. It returns the number of tolls pulled in.
	CreateRental(ctx context.Context, in RentalInput) (*domain.Rental, int, error)
	GetRental(ctx context.Context, id string) (*domain.RentalDetail, error)
	ListRentals(ctx context.Context, status domain.RentalStatus) ([]*domain.Rental, error)
	UpdateRental(ctx context.Context, id string, patch RentalPatch) (*domain.Rental, error)
	DeleteRental(ctx context.Context, id string) error
	ArchiveRental(ctx context.Context, id string) (*domain.Rental, error)
	ArchiveStatement(ctx context.Context, renterName string) (int, error)
}

type TollService interface {
	ImportTolls(ctx context.Context, r io.Reader) (*ImportResult, error)
	ApplyBulkMatch(ctx context.Context, batch map[string]BulkMatchEntry) (*BulkMatchResult, error)
	// AddToll reports created=false when the lane txn id was already stored
	// and the stored toll is returned unchanged.
	AddToll(ctx context.Context, in TollInput) (toll *domain.Toll, created bool, err error)
	UpdateToll(ctx context.Context, id string, patch TollPatch) (*domain.Toll, error)
	DeleteToll(ctx context.Context, id string) error
	DeleteAllTolls(ctx context.Context) (int64, error)
	ClearRentalTolls(ctx context.Context, rentalID string) (int, error)
	AssignToll(ctx context.Context, tollID, rentalID string) (*domain.Toll, error)
	UnassignToll(ctx context.Context, tollID string) (*domain.Toll, error)
	ListTolls(ctx context.Context, filter repository.TollFilter) ([]domain.TollView, error)
	RematchUnmatched(ctx context.Context) (*RematchResult, error)
}

type TicketService interface {
	AddTicket(ctx context.Context, in TicketInput) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	ListTickets(ctx context.Context, rentalID string) ([]*domain.Ticket, error)
}

type LedgerService interface {
	Recompute(ctx context.Context, rentalID string) (*domain.Rental, error)
	ListRenters(ctx context.Context) ([]domain.RenterSummary, error)
	GetStatement(ctx context.Context, renterName string) (*domain.Statement, error)
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	OutstandingRenters(ctx context.Context, threshold decimal.Decimal) ([]domain.RenterSummary, error)
}

type RentalInput struct {
	RenterName string
	CarModel   string
	StartDate  time.Time
	EndDate    time.Time
	Amount     decimal.Decimal
	TotalPaid  decimal.Decimal
}

// RentalPatch carries the fields to change; nil means unchanged.
type RentalPatch struct {
	RenterName *string
	CarModel   *string
	StartDate  *time.Time
	EndDate    *time.Time
	Amount     *decimal.Decimal
	TotalPaid  *decimal.Decimal
}

type TollInput struct {
	// RentalID is optional. When empty the matcher picks the rental.
	RentalID      string
	LaneTxnID     string
	TransactionAt time.Time
	Location      string
	Amount        decimal.Decimal
	Plate         string
	Agency        string
	Class         string
}

type TollPatch struct {
	TransactionAt *time.Time
	Location      *string
	Amount        *decimal.Decimal
	Plate         *string
}

type TicketInput struct {
	RentalID    string
	Date        time.Time
	Time        string
	Category    string
	Location    string
	Amount      decimal.Decimal
	Description string
}

type BulkMatchEntry struct {
	Tolls []*domain.Toll `json:"tolls"`
}

type AmbiguousMatch struct {
	TollID     string `json:"toll_id"`
	RentalID   string `json:"rental_id"`
	Candidates int    `json:"candidates"`
}

type ImportResult struct {
	Parsed     int                    `json:"parsed"`
	Duplicates int                    `json:"duplicates"`
	Payments   int                    `json:"payments"`
	Skipped    []reconcile.SkippedRow `json:"skipped,omitempty"`
	Matched    int                    `json:"matched"`
	Unmatched  int                    `json:"unmatched"`
	Ambiguous  []AmbiguousMatch       `json:"ambiguous,omitempty"`
	Message    string                 `json:"message"`
}

type BulkMatchResult struct {
	Added      map[string]int `json:"added"`
	Duplicates int            `json:"duplicates"`
}

type RematchResult struct {
	Examined  int              `json:"examined"`
	Matched   int              `json:"matched"`
	Ambiguous []AmbiguousMatch `json:"ambiguous,omitempty"`
}
