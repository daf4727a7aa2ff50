package domain

// RentalAgreement is one rental, keyed by its receipt number.
// ReturnDateTime holds the scheduled return time until the car is returned,
// after which it holds the actual return time.
type RentalAgreement struct {
	ReceiptNumber      uint64 `json:"receipt_number"`
	RentalDateTime     int64  `json:"rental_date_time"`
	VINNumber          string `json:"vin_number"`
	CarInsuranceNumber string `json:"car_insurance_number"`
	ReturnDateTime     int64  `json:"return_date_time"`
	RentalCompanyName  string `json:"rental_company_name"`
	UserRetailerName   string `json:"user_retailer_name"`
	CompanyLocation    string `json:"company_location"`
	CostPerDay         Money  `json:"cost_per_day"`
	AdditionalCosts    Money  `json:"additional_costs"`
	Closed             bool   `json:"closed"`
}

// Status reports the lifecycle state derived from Closed.
func (a *RentalAgreement) Status() AgreementStatus {
	if a.Closed {
		return AgreementStatusClosed
	}
	return AgreementStatusOpen
}

// IsOverdue reports whether an open agreement is past its scheduled return time.
func (a *RentalAgreement) IsOverdue(asOf int64) bool {
	return !a.Closed && a.ReturnDateTime < asOf
}

type AgreementStatus string

const (
	AgreementStatusOpen   AgreementStatus = "OPEN"
	AgreementStatusClosed AgreementStatus = "CLOSED"
)
