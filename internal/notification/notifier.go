package notification

import (
	"context"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/utils"
)

// Notifier tells the rental operator about ledger events. Delivery is best
// effort: callers log failures and never undo a committed transition.
type Notifier interface {
	RentalReturned(ctx context.Context, agreement *domain.RentalAgreement, state *domain.EVCarState) error
	OverdueRentals(ctx context.Context, asOf int64, agreements []domain.RentalAgreement) error
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) RentalReturned(ctx context.Context, a *domain.RentalAgreement, st *domain.EVCarState) error {
	args := []any{
		"receipt_number", a.ReceiptNumber,
		"vin_number", a.VINNumber,
		"return_date_time", a.ReturnDateTime,
		"additional_costs", a.AdditionalCosts.String(),
		"battery_level", st.BatteryLevel,
		"battery_range", st.BatteryRange,
	}
	if charge, err := utils.CalculateRentalCharge(a); err == nil {
		args = append(args, "billable_days", charge.Days, "total_charge", charge.Total.String())
	} else {
		args = append(args, "charge_error", err)
	}
	logger.InfoContext(ctx, "Rental returned", args...)
	return nil
}

// OverdueRentals logs a single digest line; per-rental detail is logged by the report job.
func (n *LogNotifier) OverdueRentals(ctx context.Context, asOf int64, agreements []domain.RentalAgreement) error {
	if len(agreements) == 0 {
		return nil
	}
	receipts := make([]uint64, 0, len(agreements))
	for _, a := range agreements {
		receipts = append(receipts, a.ReceiptNumber)
	}
	logger.InfoContext(ctx, "Overdue rental report", "count", len(agreements), "receipt_numbers", receipts, "as_of", asOf)
	return nil
}
