package reconcile

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"rentaltoll-backend/internal/domain"
)

func SumTolls(tolls []*domain.Toll) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tolls {
		total = total.Add(t.Amount)
	}
	return total
}

func SumTickets(tickets []*domain.Ticket) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tickets {
		total = total.Add(t.Amount)
	}
	return total
}

// ApplyTotals sets the derived totals of r from its attached records and
// reports whether anything changed.
func ApplyTotals(r *domain.Rental, tolls []*domain.Toll, tickets []*domain.Ticket) bool {
	tollSum := SumTolls(tolls)
	ticketSum := SumTickets(tickets)
	changed := !r.TotalTolls.Equal(tollSum) || !r.TotalTickets.Equal(ticketSum)
	r.TotalTolls = tollSum
	r.TotalTickets = ticketSum
	return changed
}

// SummarizeRenters groups active rentals by exact renter name, most recent
// rental first.
func SummarizeRenters(rentals []*domain.Rental) []domain.RenterSummary {
	byName := make(map[string]*domain.RenterSummary)
	for _, r := range rentals {
		if r.IsArchived() {
			continue
		}
		s, ok := byName[r.RenterName]
		if !ok {
			s = &domain.RenterSummary{
				RenterName:   r.RenterName,
				TotalRental:  decimal.Zero,
				TotalTolls:   decimal.Zero,
				TotalTickets: decimal.Zero,
				TotalPaid:    decimal.Zero,
			}
			byName[r.RenterName] = s
		}
		addToSummary(s, r)
	}

	out := make([]domain.RenterSummary, 0, len(byName))
	for _, s := range byName {
		s.TotalCost = s.TotalRental.Add(s.TotalTolls).Add(s.TotalTickets)
		s.Balance = s.TotalCost.Sub(s.TotalPaid)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastRentalDate.Equal(out[j].LastRentalDate) {
			return out[i].LastRentalDate.After(out[j].LastRentalDate)
		}
		return strings.Compare(out[i].RenterName, out[j].RenterName) < 0
	})
	return out
}

// SummarizeRenter aggregates the active rentals of name. ok is false when
// the renter has none.
func SummarizeRenter(name string, rentals []*domain.Rental) (summary domain.RenterSummary, ok bool) {
	for _, s := range SummarizeRenters(rentals) {
		if s.RenterName == name {
			return s, true
		}
	}
	return domain.RenterSummary{}, false
}

func addToSummary(s *domain.RenterSummary, r *domain.Rental) {
	s.RentalCount++
	s.TotalRental = s.TotalRental.Add(r.Amount)
	s.TotalTolls = s.TotalTolls.Add(r.TotalTolls)
	s.TotalTickets = s.TotalTickets.Add(r.TotalTickets)
	s.TotalPaid = s.TotalPaid.Add(r.TotalPaid)
	if r.StartDate.After(s.LastRentalDate) {
		s.LastRentalDate = r.StartDate
	}
}

// BuildDashboard computes revenue and expense figures over all rentals,
// with a per-month breakdown keyed by the rental start month, newest first.
func BuildDashboard(rentals []*domain.Rental) domain.Dashboard {
	d := domain.Dashboard{
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
		Outstanding:   decimal.Zero,
	}
	months := make(map[string]*domain.MonthlyTotals)

	for _, r := range rentals {
		expenses := r.TotalTolls.Add(r.TotalTickets)
		balance := r.Balance()

		d.TotalRevenue = d.TotalRevenue.Add(r.Amount)
		d.TotalExpenses = d.TotalExpenses.Add(expenses)
		if balance.IsPositive() {
			d.Outstanding = d.Outstanding.Add(balance)
		}
		if r.IsArchived() {
			d.ArchivedCount++
		} else {
			d.ActiveCount++
		}

		key := r.StartDate.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &domain.MonthlyTotals{
				Month:       key,
				Revenue:     decimal.Zero,
				Expenses:    decimal.Zero,
				Outstanding: decimal.Zero,
				NetProfit:   decimal.Zero,
			}
			months[key] = m
		}
		m.RentalCount++
		m.Revenue = m.Revenue.Add(r.Amount)
		m.Expenses = m.Expenses.Add(expenses)
		m.NetProfit = m.Revenue.Sub(m.Expenses)
		if balance.IsPositive() {
			m.Outstanding = m.Outstanding.Add(balance)
		}
	}
	d.NetProfit = d.TotalRevenue.Sub(d.TotalExpenses)

	d.Monthly = make([]domain.MonthlyTotals, 0, len(months))
	for _, m := range months {
		d.Monthly = append(d.Monthly, *m)
	}
	sort.Slice(d.Monthly, func(i, j int) bool { return d.Monthly[i].Month > d.Monthly[j].Month })
	return d
}
