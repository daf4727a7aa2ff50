package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"ev-rental-ledger/internal/domain"
)

// decimalUint is an unsigned integer sent either as a decimal string or as an
// integral JSON number no larger than domain.MaxExactNumber.
type decimalUint uint64

func (d *decimalUint) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("expected unsigned integer, got null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("expected unsigned integer, got %q", s)
		}
		*d = decimalUint(n)
		return nil
	}
	tooBig := fmt.Errorf("expected unsigned integer up to %d, got %s", uint64(domain.MaxExactNumber), data)
	if n, err := strconv.ParseUint(string(data), 10, 64); err == nil {
		if n > domain.MaxExactNumber {
			return tooBig
		}
		*d = decimalUint(n)
		return nil
	}
	// Integral numbers written with a fraction or exponent, such as 5.0 or 1e3.
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || f < 0 || f > domain.MaxExactNumber || math.Trunc(f) != f {
		return tooBig
	}
	*d = decimalUint(f)
	return nil
}

type createAgreementRequest struct {
	ReceiptNumber      decimalUint `json:"receipt_number"`
	RentalDateTime     int64       `json:"rental_date_time"`
	VINNumber          string      `json:"vin_number"`
	CarInsuranceNumber string      `json:"car_insurance_number"`
	ReturnDateTime     int64       `json:"return_date_time"`
	RentalCompanyName  string      `json:"rental_company_name"`
	UserRetailerName   string      `json:"user_retailer_name"`
	CompanyLocation    string      `json:"company_location"`
	CostPerDay         decimalUint `json:"cost_per_day"`
}

// batteryRequest uses pointers so absent telemetry is told apart from zero.
type batteryRequest struct {
	BatteryLife        *uint32 `json:"battery_life"`
	BatteryLevel       *uint32 `json:"battery_level"`
	UsableBatteryLevel *uint32 `json:"usable_battery_level"`
	BatteryRange       *uint32 `json:"battery_range"`
}

func (b batteryRequest) toDomain() (domain.BatteryState, error) {
	fields := []struct {
		name string
		v    *uint32
	}{
		{"battery_life", b.BatteryLife},
		{"battery_level", b.BatteryLevel},
		{"usable_battery_level", b.UsableBatteryLevel},
		{"battery_range", b.BatteryRange},
	}
	for _, f := range fields {
		if f.v == nil {
			return domain.BatteryState{}, missingField(f.name)
		}
	}
	return domain.BatteryState{
		BatteryLife:        *b.BatteryLife,
		BatteryLevel:       *b.BatteryLevel,
		UsableBatteryLevel: *b.UsableBatteryLevel,
		BatteryRange:       *b.BatteryRange,
	}, nil
}

type returnRequest struct {
	ReturnDateTime  *int64      `json:"return_date_time"`
	AdditionalCosts decimalUint `json:"additional_costs"`
	batteryRequest
}

func missingField(name string) error {
	return fmt.Errorf("%w: field %s is required", domain.ErrInvalidInput, name)
}
