package grpc

import (
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/service"
)

// Receipt numbers and money travel as decimal strings; other integers as numbers.

func MapDomainAgreementToProto(a *domain.RentalAgreement) *structpb.Struct {
	if a == nil {
		return nil
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"receipt_number":       structpb.NewStringValue(strconv.FormatUint(a.ReceiptNumber, 10)),
		"rental_date_time":     structpb.NewNumberValue(float64(a.RentalDateTime)),
		"vin_number":           structpb.NewStringValue(a.VINNumber),
		"car_insurance_number": structpb.NewStringValue(a.CarInsuranceNumber),
		"return_date_time":     structpb.NewNumberValue(float64(a.ReturnDateTime)),
		"rental_company_name":  structpb.NewStringValue(a.RentalCompanyName),
		"user_retailer_name":   structpb.NewStringValue(a.UserRetailerName),
		"company_location":     structpb.NewStringValue(a.CompanyLocation),
		"cost_per_day":         structpb.NewStringValue(a.CostPerDay.String()),
		"additional_costs":     structpb.NewStringValue(a.AdditionalCosts.String()),
		"closed":               structpb.NewBoolValue(a.Closed),
		"status":               structpb.NewStringValue(string(a.Status())),
	}}
}

func MapDomainEVStateToProto(st *domain.EVCarState) *structpb.Struct {
	if st == nil {
		return nil
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"vin_number":           structpb.NewStringValue(st.VINNumber),
		"battery_life":         structpb.NewNumberValue(float64(st.BatteryLife)),
		"battery_level":        structpb.NewNumberValue(float64(st.BatteryLevel)),
		"usable_battery_level": structpb.NewNumberValue(float64(st.UsableBatteryLevel)),
		"battery_range":        structpb.NewNumberValue(float64(st.BatteryRange)),
	}}
}

func MapProtoToCreateInput(s *structpb.Struct) (service.CreateRentalAgreementInput, error) {
	r := fieldReader{s: s}
	in := service.CreateRentalAgreementInput{
		ReceiptNumber:      r.u64("receipt_number"),
		RentalDateTime:     r.i64("rental_date_time"),
		VINNumber:          r.str("vin_number"),
		CarInsuranceNumber: r.str("car_insurance_number"),
		ReturnDateTime:     r.i64("return_date_time"),
		RentalCompanyName:  r.str("rental_company_name"),
		UserRetailerName:   r.str("user_retailer_name"),
		CompanyLocation:    r.str("company_location"),
		CostPerDay:         domain.Money(r.u64("cost_per_day")),
	}
	return in, r.err
}

func MapProtoToReturnInput(s *structpb.Struct) (service.ReturnEVCarInput, error) {
	r := fieldReader{s: s}
	r.require("return_date_time")
	in := service.ReturnEVCarInput{
		ReceiptNumber:   r.u64("receipt_number"),
		ReturnDateTime:  r.i64("return_date_time"),
		AdditionalCosts: domain.Money(r.u64("additional_costs")),
		Battery:         r.battery(),
	}
	return in, r.err
}

func MapProtoToBatteryState(s *structpb.Struct) (string, domain.BatteryState, error) {
	r := fieldReader{s: s}
	vin := r.str("vin_number")
	battery := r.battery()
	return vin, battery, r.err
}

func MapProtoToReceiptNumber(s *structpb.Struct) (uint64, error) {
	r := fieldReader{s: s}
	receipt := r.u64("receipt_number")
	return receipt, r.err
}

func MapProtoToVINNumber(s *structpb.Struct) (string, error) {
	r := fieldReader{s: s}
	vin := r.str("vin_number")
	return vin, r.err
}

// fieldReader extracts typed fields and keeps the first error. Absent fields
// read as zero unless listed in require.
type fieldReader struct {
	s   *structpb.Struct
	err error
}

func (r *fieldReader) value(key string) *structpb.Value {
	if r.s == nil {
		return nil
	}
	return r.s.GetFields()[key]
}

func (r *fieldReader) fail(key string, format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: field %s: %s", domain.ErrInvalidInput, key, fmt.Sprintf(format, args...))
	}
}

// require fails the read when any of keys is absent or null.
func (r *fieldReader) require(keys ...string) {
	for _, key := range keys {
		v := r.value(key)
		if v == nil {
			r.fail(key, "is required")
			continue
		}
		if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
			r.fail(key, "is required")
		}
	}
}

func (r *fieldReader) str(key string) string {
	v := r.value(key)
	if v == nil {
		return ""
	}
	if _, ok := v.GetKind().(*structpb.Value_StringValue); !ok {
		r.fail(key, "expected string")
		return ""
	}
	return v.GetStringValue()
}

func (r *fieldReader) u64(key string) uint64 {
	v := r.value(key)
	if v == nil {
		return 0
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseUint(k.StringValue, 10, 64)
		if err != nil {
			r.fail(key, "expected unsigned integer, got %q", k.StringValue)
			return 0
		}
		return n
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f < 0 || f > domain.MaxExactNumber || math.Trunc(f) != f {
			r.fail(key, "expected unsigned integer, got %v", f)
			return 0
		}
		return uint64(f)
	default:
		r.fail(key, "expected unsigned integer")
		return 0
	}
}

func (r *fieldReader) i64(key string) int64 {
	v := r.value(key)
	if v == nil {
		return 0
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			r.fail(key, "expected integer, got %q", k.StringValue)
			return 0
		}
		return n
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if math.Abs(f) > domain.MaxExactNumber || math.Trunc(f) != f {
			r.fail(key, "expected integer, got %v", f)
			return 0
		}
		return int64(f)
	default:
		r.fail(key, "expected integer")
		return 0
	}
}

func (r *fieldReader) u32(key string) uint32 {
	n := r.u64(key)
	if n > math.MaxUint32 {
		r.fail(key, "value %d out of range", n)
		return 0
	}
	return uint32(n)
}

func (r *fieldReader) battery() domain.BatteryState {
	r.require("battery_life", "battery_level", "usable_battery_level", "battery_range")
	return domain.BatteryState{
		BatteryLife:        r.u32("battery_life"),
		BatteryLevel:       r.u32("battery_level"),
		UsableBatteryLevel: r.u32("usable_battery_level"),
		BatteryRange:       r.u32("battery_range"),
	}
}
