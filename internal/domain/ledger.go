package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RenterSummary aggregates the active rentals of one renter.
type RenterSummary struct {
	RenterName     string          `json:"renter_name"`
	RentalCount    int             `json:"rental_count"`
	TotalRental    decimal.Decimal `json:"total_rental"`
	TotalTolls     decimal.Decimal `json:"total_tolls"`
	TotalTickets   decimal.Decimal `json:"total_tickets"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	Balance        decimal.Decimal `json:"balance"`
	LastRentalDate time.Time       `json:"last_rental_date"`
}

// RentalDetail is a rental with its attached records.
type RentalDetail struct {
	Rental  *Rental   `json:"rental"`
	Tolls   []*Toll   `json:"tolls"`
	Tickets []*Ticket `json:"tickets"`
}

// Statement is the renter-facing bill across all active rentals.
type Statement struct {
	RenterSummary
	Rentals []RentalDetail `json:"rentals"`
}

type MonthlyTotals struct {
	Month       string          `json:"month"`
	Revenue     decimal.Decimal `json:"revenue"`
	Expenses    decimal.Decimal `json:"expenses"`
	Outstanding decimal.Decimal `json:"outstanding"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	RentalCount int             `json:"rental_count"`
}

type Dashboard struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	ActiveCount   int             `json:"active_count"`
	ArchivedCount int             `json:"archived_count"`
	Monthly       []MonthlyTotals `json:"monthly"`
}
