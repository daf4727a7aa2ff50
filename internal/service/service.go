package service

import (
	"context"

	"ev-rental-ledger/internal/domain"
)

// CreateRentalAgreementInput carries the fields supplied when a rental is opened.
// ReturnDateTime is the scheduled return time.
type CreateRentalAgreementInput struct {
	ReceiptNumber      uint64
	RentalDateTime     int64
	VINNumber          string
	CarInsuranceNumber string
	ReturnDateTime     int64
	RentalCompanyName  string
	UserRetailerName   string
	CompanyLocation    string
	CostPerDay         domain.Money
}

// ReturnEVCarInput carries the actual return time, final costs and telemetry.
type ReturnEVCarInput struct {
	ReceiptNumber   uint64
	ReturnDateTime  int64
	AdditionalCosts domain.Money
	Battery         domain.BatteryState
}

type RentalLedgerService interface {
	CreateRentalAgreement(ctx context.Context, in CreateRentalAgreementInput) (*domain.RentalAgreement, error)
	ReturnEVCar(ctx context.Context, in ReturnEVCarInput) (*domain.RentalAgreement, error)
	UpdateEVCarState(ctx context.Context, vinNumber string, battery domain.BatteryState) (*domain.EVCarState, error)
	GetRentalAgreement(ctx context.Context, receiptNumber uint64) (*domain.RentalAgreement, error)
	GetEVCarState(ctx context.Context, vinNumber string) (*domain.EVCarState, error)
	ListOverdueAgreements(ctx context.Context, asOf int64) ([]domain.RentalAgreement, error)
}
