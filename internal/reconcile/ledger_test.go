package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyTotals(t *testing.T) {
	r := &domain.Rental{Amount: dec("100")}
	tolls := []*domain.Toll{{Amount: dec("5")}, {Amount: dec("-2.50")}}
	tickets := []*domain.Ticket{{Amount: dec("40")}}

	assert.True(t, ApplyTotals(r, tolls, tickets))
	assert.True(t, r.TotalTolls.Equal(dec("2.5")))
	assert.True(t, r.TotalTickets.Equal(dec("40")))
	assert.True(t, r.TotalCost().Equal(dec("142.5")))
	assert.True(t, r.Balance().Equal(dec("142.5")))
	assert.False(t, r.IsPaid())

	assert.False(t, ApplyTotals(r, tolls, tickets))

	r.TotalPaid = dec("142.49")
	assert.True(t, r.IsPaid())
	r.TotalPaid = dec("142.48")
	assert.False(t, r.IsPaid())
}

func TestSummarizeRenters(t *testing.T) {
	rentals := []*domain.Rental{
		{ID: "1", RenterName: "Ana", Amount: dec("100"), TotalTolls: dec("5"), TotalPaid: dec("50"), StartDate: day(1, 0), Status: domain.RentalStatusActive},
		{ID: "2", RenterName: "Ana", Amount: dec("80"), TotalTickets: dec("20"), StartDate: day(10, 0), Status: domain.RentalStatusActive},
		{ID: "3", RenterName: "Ana", Amount: dec("999"), StartDate: day(20, 0), Status: domain.RentalStatusArchived},
		{ID: "4", RenterName: "ana", Amount: dec("10"), StartDate: day(5, 0), Status: domain.RentalStatusActive},
	}

	summaries := SummarizeRenters(rentals)
	require.Len(t, summaries, 2)

	ana := summaries[0]
	assert.Equal(t, "Ana", ana.RenterName)
	assert.Equal(t, 2, ana.RentalCount)
	assert.True(t, ana.TotalRental.Equal(dec("180")))
	assert.True(t, ana.TotalCost.Equal(dec("205")))
	assert.True(t, ana.Balance.Equal(dec("155")))
	assert.True(t, ana.LastRentalDate.Equal(day(10, 0)))

	assert.Equal(t, "ana", summaries[1].RenterName)

	_, ok := SummarizeRenter("Bob", rentals)
	assert.False(t, ok)
}

func TestBuildDashboard(t *testing.T) {
	rentals := []*domain.Rental{
		{Amount: dec("100"), TotalTolls: dec("10"), TotalPaid: dec("0"), StartDate: day(1, 0), Status: domain.RentalStatusActive},
		{Amount: dec("50"), TotalTickets: dec("5"), TotalPaid: dec("80"), StartDate: day(3, 0), Status: domain.RentalStatusArchived},
	}
	rentals = append(rentals, &domain.Rental{
		Amount: dec("30"), StartDate: day(1, 0).AddDate(0, 1, 0), Status: domain.RentalStatusActive,
	})

	d := BuildDashboard(rentals)
	assert.True(t, d.TotalRevenue.Equal(dec("180")))
	assert.True(t, d.TotalExpenses.Equal(dec("15")))
	assert.True(t, d.NetProfit.Equal(dec("165")))
	// negative balance of the second rental is not outstanding
	assert.True(t, d.Outstanding.Equal(dec("140")))
	assert.Equal(t, 2, d.ActiveCount)
	assert.Equal(t, 1, d.ArchivedCount)

	require.Len(t, d.Monthly, 2)
	assert.Equal(t, "2025-02", d.Monthly[0].Month)
	assert.Equal(t, "2025-01", d.Monthly[1].Month)
	assert.Equal(t, 2, d.Monthly[1].RentalCount)
	assert.True(t, d.Monthly[1].NetProfit.Equal(dec("135")))
}
