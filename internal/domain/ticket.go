package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TicketCategory string

const (
	TicketCategoryParking  TicketCategory = "Parking"
	TicketCategorySpeeding TicketCategory = "Speeding"
	TicketCategoryRedLight TicketCategory = "Red Light"
	TicketCategoryOther    TicketCategory = "Other"
)

// ParseTicketCategory accepts the category name case-insensitively.
// An empty value maps to Other.
func ParseTicketCategory(s string) (TicketCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parking":
		return TicketCategoryParking, nil
	case "speeding":
		return TicketCategorySpeeding, nil
	case "red light", "red_light", "redlight":
		return TicketCategoryRedLight, nil
	case "other", "":
		return TicketCategoryOther, nil
	}
	return "", fmt.Errorf("%w: unknown ticket category %q", ErrInvalidInput, s)
}

type Ticket struct {
	ID          string          `json:"id"`
	RentalID    string          `json:"rental_id"`
	IssuedOn    time.Time       `json:"date"`
	Time        string          `json:"time"`
	Category    TicketCategory  `json:"category"`
	Location    string          `json:"location"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedOn   time.Time       `json:"created_on"`
}

func (t *Ticket) Validate() error {
	if t.RentalID == "" {
		return fmt.Errorf("%w: ticket requires a rental", ErrInvalidInput)
	}
	if t.IssuedOn.IsZero() {
		return fmt.Errorf("%w: ticket date is required", ErrInvalidInput)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: ticket amount must not be negative", ErrInvalidInput)
	}
	if _, err := ParseTicketCategory(string(t.Category)); err != nil {
		return err
	}
	return nil
}
