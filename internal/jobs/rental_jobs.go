package jobs

import (
	"context"
	"fmt"

	"ev-rental-ledger/internal/logger"
)

// ReportOverdueRentals finds open agreements past their scheduled return time
// and hands them to the notifier.
// Schedule: hourly by default (scheduler.report_overdue_rentals)
func (jr *JobRunner) ReportOverdueRentals() {
	jr.runWithRecovery("ReportOverdueRentals", jr.reportOverdueRentals)
}

func (jr *JobRunner) reportOverdueRentals(ctx context.Context) error {
	asOf := jr.now().Unix()

	overdue, err := jr.ledger.ListOverdueAgreements(ctx, asOf)
	if err != nil {
		return fmt.Errorf("failed to list overdue agreements: %w", err)
	}
	if len(overdue) == 0 {
		logger.Info("No overdue rentals", "as_of", asOf)
		return nil
	}

	for _, a := range overdue {
		logger.Warn("Rental overdue",
			"receipt_number", a.ReceiptNumber,
			"vin_number", a.VINNumber,
			"rental_company_name", a.RentalCompanyName,
			"return_date_time", a.ReturnDateTime,
			"overdue_seconds", asOf-a.ReturnDateTime,
		)
	}

	if err := jr.notifier.OverdueRentals(ctx, asOf, overdue); err != nil {
		return fmt.Errorf("failed to send overdue report: %w", err)
	}
	logger.Info("Overdue rentals reported", "count", len(overdue), "as_of", asOf)
	return nil
}
