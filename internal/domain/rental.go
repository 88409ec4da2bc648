package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusActive   RentalStatus = "active"
	RentalStatusArchived RentalStatus = "archived"
)

// PaidTolerance is the largest balance still treated as settled.
var PaidTolerance = decimal.RequireFromString("0.01")

type Rental struct {
	ID         string          `json:"id" diff:"id"`
	RenterName string          `json:"renter_name" diff:"renter_name"`
	CarModel   string          `json:"car_model" diff:"car_model"`
	StartDate  time.Time       `json:"start_date" diff:"start_date"`
	EndDate    time.Time       `json:"end_date" diff:"end_date"`
	Amount     decimal.Decimal `json:"amount" diff:"amount"`
	// Derived from attached tolls and tickets, persisted for cheap reads.
	TotalTolls   decimal.Decimal `json:"total_tolls" diff:"-"`
	TotalTickets decimal.Decimal `json:"total_tickets" diff:"-"`
	TotalPaid    decimal.Decimal `json:"total_paid" diff:"total_paid"`
	Status       RentalStatus    `json:"status" diff:"-"`
	CreatedOn    time.Time       `json:"created_on" diff:"-"`
	UpdatedOn    time.Time       `json:"updated_on" diff:"-"`
}

func (r *Rental) TotalCost() decimal.Decimal {
	return r.Amount.Add(r.TotalTolls).Add(r.TotalTickets)
}

func (r *Rental) Balance() decimal.Decimal {
	return r.TotalCost().Sub(r.TotalPaid)
}

func (r *Rental) IsPaid() bool {
	return r.Balance().LessThanOrEqual(PaidTolerance)
}

func (r *Rental) IsArchived() bool {
	return r.Status == RentalStatusArchived
}

// Covers reports whether t falls within the rental window, both ends inclusive.
func (r *Rental) Covers(t time.Time) bool {
	return !t.Before(r.StartDate) && !t.After(r.EndDate)
}
