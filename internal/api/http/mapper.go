package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/reconcile"
)

const dateLayout = "2006-01-02"

type rentalRequest struct {
	RenterName string          `json:"renter_name"`
	CarModel   string          `json:"car_model"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Amount     decimal.Decimal `json:"amount"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
}

type rentalPatchRequest struct {
	RenterName *string          `json:"renter_name"`
	CarModel   *string          `json:"car_model"`
	StartDate  *string          `json:"start_date"`
	EndDate    *string          `json:"end_date"`
	Amount     *decimal.Decimal `json:"amount"`
	TotalPaid  *decimal.Decimal `json:"total_paid"`
}

type tollRequest struct {
	RentalID      string          `json:"rental_id"`
	LaneTxnID     string          `json:"lane_txn_id"`
	TransactionAt string          `json:"transaction_at"`
	Location      string          `json:"location"`
	Amount        decimal.Decimal `json:"amount"`
	Plate         string          `json:"plate"`
	Agency        string          `json:"agency"`
	Class         string          `json:"class"`
}

type tollPatchRequest struct {
	TransactionAt *string          `json:"transaction_at"`
	Location      *string          `json:"location"`
	Amount        *decimal.Decimal `json:"amount"`
	Plate         *string          `json:"plate"`
}

type assignRequest struct {
	RentalID string `json:"rental_id"`
}

// ticketRequest also accepts the older "type" and "reason" field names.
type ticketRequest struct {
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Location    string          `json:"location"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reason      string          `json:"reason"`
}

func (t ticketRequest) category() string {
	if t.Category != "" {
		return t.Category
	}
	return t.Type
}

func (t ticketRequest) description() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Reason
}

type rentalResponse struct {
	*domain.Rental
	TotalCost decimal.Decimal `json:"total_cost"`
	Balance   decimal.Decimal `json:"balance"`
	IsPaid    bool            `json:"is_paid"`
}

func mapRental(r *domain.Rental) rentalResponse {
	return rentalResponse{
		Rental:    r,
		TotalCost: r.TotalCost(),
		Balance:   r.Balance(),
		IsPaid:    r.IsPaid(),
	}
}

func mapRentals(rentals []*domain.Rental) []rentalResponse {
	out := make([]rentalResponse, 0, len(rentals))
	for _, r := range rentals {
		out = append(out, mapRental(r))
	}
	return out
}

type rentalDetailResponse struct {
	Rental  rentalResponse   `json:"rental"`
	Tolls   []*domain.Toll   `json:"tolls"`
	Tickets []*domain.Ticket `json:"tickets"`
}

func mapRentalDetail(d *domain.RentalDetail) rentalDetailResponse {
	resp := rentalDetailResponse{
		Rental:  mapRental(d.Rental),
		Tolls:   d.Tolls,
		Tickets: d.Tickets,
	}
	if resp.Tolls == nil {
		resp.Tolls = []*domain.Toll{}
	}
	if resp.Tickets == nil {
		resp.Tickets = []*domain.Ticket{}
	}
	return resp
}

type createRentalResponse struct {
	Rental        rentalResponse `json:"rental"`
	ResolvedTolls int            `json:"resolved_tolls"`
}

type statementResponse struct {
	domain.RenterSummary
	Rentals []rentalDetailResponse `json:"rentals"`
}

func mapStatement(s *domain.Statement) statementResponse {
	resp := statementResponse{
		RenterSummary: s.RenterSummary,
		Rentals:       make([]rentalDetailResponse, 0, len(s.Rentals)),
	}
	for i := range s.Rentals {
		resp.Rentals = append(resp.Rentals, mapRentalDetail(&s.Rentals[i]))
	}
	return resp
}

type countResponse struct {
	Deleted int64 `json:"deleted"`
}

// normalizeAmounts rounds each non-nil amount to cents in place.
func normalizeAmounts(amounts ...*decimal.Decimal) error {
	for _, a := range amounts {
		if a == nil {
			continue
		}
		n, ok := reconcile.NormalizeAmount(*a)
		if !ok {
			return invalid(fmt.Sprintf("amount %s is out of range", a.String()))
		}
		*a = n
	}
	return nil
}

// parseRentalDate reads a rental boundary. A bare date starts at midnight
// and, for the end of a rental, runs through the last second of the day.
func parseRentalDate(value string, endOfDay bool, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, invalid("rental dates are required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, invalid(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD or RFC3339", value))
	}
	if endOfDay {
		// Calendar day, so DST days keep their 23 or 25 hours.
		d = d.AddDate(0, 0, 1).Add(-time.Second)
	}
	return d, nil
}

// parseTollTime accepts RFC3339 or any of the toll export layouts.
func parseTollTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := reconcile.ParseTimestamp(value, loc)
	if err != nil {
		return time.Time{}, invalid(fmt.Sprintf("invalid transaction time %q", value))
	}
	return t, nil
}

func parseTicketDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		// Validation in the service reports the missing date.
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, invalid(fmt.Sprintf("invalid ticket date %q, expected YYYY-MM-DD", value))
	}
	return d, nil
}

func parseRentalStatus(value string) (domain.RentalStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case string(domain.RentalStatusActive):
		return domain.RentalStatusActive, nil
	case string(domain.RentalStatusArchived):
		return domain.RentalStatusArchived, nil
	}
	return "", invalid(fmt.Sprintf("unknown rental status %q", value))
}

func parseTollStatus(value string) (domain.TollStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case strings.ToLower(string(domain.TollStatusMatched)):
		return domain.TollStatusMatched, nil
	case strings.ToLower(string(domain.TollStatusUnmatched)):
		return domain.TollStatusUnmatched, nil
	}
	return "", invalid(fmt.Sprintf("unknown toll status %q", value))
}
