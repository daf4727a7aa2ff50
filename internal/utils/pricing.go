package utils

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"ev-rental-ledger/internal/domain"
)

const secondsPerDay = 24 * 60 * 60

// ErrChargeOverflow is returned when a charge does not fit in domain.Money.
var ErrChargeOverflow = errors.New("rental charge overflows")

// RentalChargeBreakdown provides detailed charge breakdown for a closed rental
type RentalChargeBreakdown struct {
	Days            uint64
	DaysCost        domain.Money
	AdditionalCosts domain.Money
	Total           domain.Money
}

// BillableDays counts the UTC calendar days a rental spans. Both the start
// and end day are included, so a same-day return bills one day.
func BillableDays(rentalDateTime, returnDateTime int64) (uint64, error) {
	if returnDateTime < rentalDateTime {
		return 0, fmt.Errorf("return time %d is before rental time %d", returnDateTime, rentalDateTime)
	}
	startDay := utcDay(rentalDateTime)
	endDay := utcDay(returnDateTime)
	return uint64(endDay-startDay) + 1, nil
}

func utcDay(sec int64) int64 {
	t := time.Unix(sec, 0).UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Unix() / secondsPerDay
}

// CalculateRentalCharge computes what the customer owes for an agreement:
// billable days times cost per day, plus additional costs.
func CalculateRentalCharge(a *domain.RentalAgreement) (RentalChargeBreakdown, error) {
	days, err := BillableDays(a.RentalDateTime, a.ReturnDateTime)
	if err != nil {
		return RentalChargeBreakdown{}, err
	}

	hi, daysCost := bits.Mul64(days, uint64(a.CostPerDay))
	if hi != 0 {
		return RentalChargeBreakdown{}, fmt.Errorf("%w: %d days at %s per day", ErrChargeOverflow, days, a.CostPerDay)
	}
	total, carry := bits.Add64(daysCost, uint64(a.AdditionalCosts), 0)
	if carry != 0 {
		return RentalChargeBreakdown{}, fmt.Errorf("%w: additional costs %s", ErrChargeOverflow, a.AdditionalCosts)
	}

	return RentalChargeBreakdown{
		Days:            days,
		DaysCost:        domain.Money(daysCost),
		AdditionalCosts: a.AdditionalCosts,
		Total:           domain.Money(total),
	}, nil
}
