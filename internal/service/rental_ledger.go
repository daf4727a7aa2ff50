package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/metrics"
	"ev-rental-ledger/internal/notification"
	"ev-rental-ledger/internal/repository"
)

// Receipt numbers are stored in a signed 64-bit column.
const maxReceiptNumber = math.MaxInt64

const (
	opCreateRentalAgreement = "create_rental_agreement"
	opReturnEVCar           = "return_ev_car"
	opUpdateEVCarState      = "update_ev_car_state"
	opGetRentalAgreement    = "get_rental_agreement"
	opGetEVCarState         = "get_ev_car_state"
	opListOverdue           = "list_overdue_agreements"
)

type rentalLedgerService struct {
	store    repository.Store
	notifier notification.Notifier
	metrics  *metrics.LedgerMetrics
}

func NewRentalLedgerService(store repository.Store, notifier notification.Notifier, m *metrics.LedgerMetrics) RentalLedgerService {
	if notifier == nil {
		notifier = notification.NewLogNotifier()
	}
	return &rentalLedgerService{
		store:    store,
		notifier: notifier,
		metrics:  m,
	}
}

func (s *rentalLedgerService) CreateRentalAgreement(ctx context.Context, in CreateRentalAgreementInput) (agreement *domain.RentalAgreement, err error) {
	logger.EnterMethod(ctx, "CreateRentalAgreement", "receipt_number", in.ReceiptNumber)
	defer s.track(ctx, "CreateRentalAgreement", opCreateRentalAgreement, time.Now(), &err, "receipt_number", in.ReceiptNumber)

	if err := validateReceipt(in.ReceiptNumber); err != nil {
		return nil, err
	}
	if err := validateVIN(in.VINNumber); err != nil {
		return nil, err
	}
	if in.RentalDateTime < 0 || in.ReturnDateTime < 0 {
		return nil, fmt.Errorf("%w: timestamps must not be negative", domain.ErrInvalidInput)
	}

	a := &domain.RentalAgreement{
		ReceiptNumber:      in.ReceiptNumber,
		RentalDateTime:     in.RentalDateTime,
		VINNumber:          in.VINNumber,
		CarInsuranceNumber: in.CarInsuranceNumber,
		ReturnDateTime:     in.ReturnDateTime,
		RentalCompanyName:  in.RentalCompanyName,
		UserRetailerName:   in.UserRetailerName,
		CompanyLocation:    in.CompanyLocation,
		CostPerDay:         in.CostPerDay,
		AdditionalCosts:    0,
		Closed:             false,
	}

	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		return tx.Agreements().Insert(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Rental agreement created", "receipt_number", a.ReceiptNumber, "vin_number", a.VINNumber)
	return a, nil
}

func (s *rentalLedgerService) ReturnEVCar(ctx context.Context, in ReturnEVCarInput) (agreement *domain.RentalAgreement, err error) {
	logger.EnterMethod(ctx, "ReturnEVCar", "receipt_number", in.ReceiptNumber)
	defer s.track(ctx, "ReturnEVCar", opReturnEVCar, time.Now(), &err, "receipt_number", in.ReceiptNumber)

	if err := validateReceipt(in.ReceiptNumber); err != nil {
		return nil, err
	}
	if in.ReturnDateTime < 0 {
		return nil, fmt.Errorf("%w: return time must not be negative", domain.ErrInvalidInput)
	}
	if err := in.Battery.Validate(); err != nil {
		return nil, err
	}

	var state *domain.EVCarState
	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		a, err := tx.Agreements().Get(ctx, in.ReceiptNumber)
		if err != nil {
			return err
		}
		if a.Closed {
			return fmt.Errorf("receipt %d: %w", a.ReceiptNumber, domain.ErrAlreadyClosed)
		}

		a.ReturnDateTime = in.ReturnDateTime
		a.AdditionalCosts = in.AdditionalCosts
		a.Closed = true
		if err := tx.Agreements().Update(ctx, a); err != nil {
			return err
		}

		st := &domain.EVCarState{VINNumber: a.VINNumber, BatteryState: in.Battery}
		if err := tx.EVStates().Upsert(ctx, st); err != nil {
			return err
		}

		agreement, state = a, st
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "EV car returned", "receipt_number", agreement.ReceiptNumber, "vin_number", agreement.VINNumber)
	if nerr := s.notifier.RentalReturned(ctx, agreement, state); nerr != nil {
		logger.WarnContext(ctx, "Failed to notify rental return", "receipt_number", agreement.ReceiptNumber, "error", nerr)
	}
	return agreement, nil
}

func (s *rentalLedgerService) UpdateEVCarState(ctx context.Context, vinNumber string, battery domain.BatteryState) (state *domain.EVCarState, err error) {
	logger.EnterMethod(ctx, "UpdateEVCarState", "vin_number", vinNumber)
	defer s.track(ctx, "UpdateEVCarState", opUpdateEVCarState, time.Now(), &err, "vin_number", vinNumber)

	if err := validateVIN(vinNumber); err != nil {
		return nil, err
	}
	if err := battery.Validate(); err != nil {
		return nil, err
	}

	st := &domain.EVCarState{VINNumber: vinNumber, BatteryState: battery}
	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		return tx.EVStates().Upsert(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *rentalLedgerService) GetRentalAgreement(ctx context.Context, receiptNumber uint64) (agreement *domain.RentalAgreement, err error) {
	logger.EnterMethod(ctx, "GetRentalAgreement", "receipt_number", receiptNumber)
	defer s.track(ctx, "GetRentalAgreement", opGetRentalAgreement, time.Now(), &err, "receipt_number", receiptNumber)

	if err := validateReceipt(receiptNumber); err != nil {
		return nil, err
	}
	return s.store.Agreements().Get(ctx, receiptNumber)
}

func (s *rentalLedgerService) GetEVCarState(ctx context.Context, vinNumber string) (state *domain.EVCarState, err error) {
	logger.EnterMethod(ctx, "GetEVCarState", "vin_number", vinNumber)
	defer s.track(ctx, "GetEVCarState", opGetEVCarState, time.Now(), &err, "vin_number", vinNumber)

	if err := validateVIN(vinNumber); err != nil {
		return nil, err
	}
	return s.store.EVStates().Get(ctx, vinNumber)
}

func (s *rentalLedgerService) ListOverdueAgreements(ctx context.Context, asOf int64) (agreements []domain.RentalAgreement, err error) {
	logger.EnterMethod(ctx, "ListOverdueAgreements", "as_of", asOf)
	defer s.track(ctx, "ListOverdueAgreements", opListOverdue, time.Now(), &err, "as_of", asOf)

	agreements, err = s.store.Agreements().ListOpenDueBefore(ctx, asOf)
	if err != nil {
		return nil, err
	}
	s.metrics.SetOverdue(len(agreements))
	return agreements, nil
}

// track logs method entry/exit and records the operation outcome.
func (s *rentalLedgerService) track(ctx context.Context, method, op string, started time.Time, errp *error, args ...any) {
	err := *errp
	s.metrics.Observe(op, started, err)
	if err != nil {
		logger.ExitMethodWithError(ctx, method, err, isCallerError(err), args...)
		return
	}
	logger.ExitMethod(ctx, method, append(args, "duration", time.Since(started))...)
}

func isCallerError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrAlreadyExists) ||
		errors.Is(err, domain.ErrAlreadyClosed) ||
		errors.Is(err, domain.ErrInvalidInput)
}

func validateReceipt(receiptNumber uint64) error {
	if receiptNumber == 0 || receiptNumber > maxReceiptNumber {
		return fmt.Errorf("%w: receipt number must be between 1 and %d", domain.ErrInvalidInput, uint64(maxReceiptNumber))
	}
	return nil
}

func validateVIN(vinNumber string) error {
	if vinNumber == "" {
		return fmt.Errorf("%w: vin number is required", domain.ErrInvalidInput)
	}
	return nil
}
