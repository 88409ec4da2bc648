package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TollStatus string

const (
	TollStatusMatched   TollStatus = "Matched"
	TollStatusUnmatched TollStatus = "Unmatched"
)

// Toll is a single charge from a toll provider export. Positive amounts are
// owed by the renter, negative amounts are credits.
type Toll struct {
	ID            string          `json:"id"`
	LaneTxnID     string          `json:"lane_txn_id,omitempty"`
	TransactionAt time.Time       `json:"transaction_at"`
	Location      string          `json:"location"`
	Amount        decimal.Decimal `json:"amount"`
	Plate         string          `json:"plate,omitempty"`
	Agency        string          `json:"agency,omitempty"`
	Class         string          `json:"class,omitempty"`
	Status        TollStatus      `json:"status"`
	RentalID      *string         `json:"rental_id,omitempty"`
	CreatedOn     time.Time       `json:"created_on"`
}

func (t *Toll) IsMatched() bool {
	return t.RentalID != nil && *t.RentalID != ""
}

// Attach binds the toll to a rental and flips its status.
func (t *Toll) Attach(rentalID string) {
	id := rentalID
	t.RentalID = &id
	t.Status = TollStatusMatched
}

// Detach returns the toll to the unmatched holding set.
func (t *Toll) Detach() {
	t.RentalID = nil
	t.Status = TollStatusUnmatched
}

// TollView is a toll enriched with the renter it was billed to.
type TollView struct {
	Toll
	RenterName string `json:"renter_name,omitempty"`
}
