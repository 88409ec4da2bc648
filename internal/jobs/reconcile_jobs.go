package jobs

import (
	"context"

	"rentaltoll-backend/internal/logger"
)

// RematchUnmatchedTolls runs the matcher over held tolls again, picking up
// rentals created or re-dated since the import.
func (jr *JobRunner) RematchUnmatchedTolls() {
	jr.runWithRecovery(JobRematchUnmatchedTolls, func(ctx context.Context) error {
		res, err := jr.services.Toll.RematchUnmatched(ctx)
		if err != nil {
			return err
		}
		logger.Info("Rematched unmatched tolls", "examined", res.Examined, "matched", res.Matched)
		for _, a := range res.Ambiguous {
			logger.Warn("Rematched toll overlaps several rentals",
				"tollID", a.TollID,
				"rentalID", a.RentalID,
				"candidates", a.Candidates)
		}
		return nil
	})
}

// ReportOutstandingBalances logs renters whose active balance is above the
// configured threshold.
func (jr *JobRunner) ReportOutstandingBalances() {
	jr.runWithRecovery(JobReportOutstandingBalances, func(ctx context.Context) error {
		threshold := jr.config.OutstandingThreshold()
		renters, err := jr.services.Ledger.OutstandingRenters(ctx, threshold)
		if err != nil {
			return err
		}
		for _, r := range renters {
			logger.Warn("Outstanding balance",
				"renter", r.RenterName,
				"balance", r.Balance.StringFixed(2),
				"rentals", r.RentalCount,
				"lastRental", r.LastRentalDate.Format("2006-01-02"))
		}
		logger.Info("Outstanding balance report", "renters", len(renters), "threshold", threshold.StringFixed(2))
		return nil
	})
}
