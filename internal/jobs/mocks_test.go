package jobs

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/service"
)

// MockLedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateRentalAgreement(ctx context.Context, in service.CreateRentalAgreementInput) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

func (m *MockLedgerService) ReturnEVCar(ctx context.Context, in service.ReturnEVCarInput) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

func (m *MockLedgerService) UpdateEVCarState(ctx context.Context, vinNumber string, battery domain.BatteryState) (*domain.EVCarState, error) {
	args := m.Called(ctx, vinNumber, battery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EVCarState), args.Error(1)
}

func (m *MockLedgerService) GetRentalAgreement(ctx context.Context, receiptNumber uint64) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, receiptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

func (m *MockLedgerService) GetEVCarState(ctx context.Context, vinNumber string) (*domain.EVCarState, error) {
	args := m.Called(ctx, vinNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EVCarState), args.Error(1)
}

func (m *MockLedgerService) ListOverdueAgreements(ctx context.Context, asOf int64) ([]domain.RentalAgreement, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalAgreement), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RentalReturned(ctx context.Context, a *domain.RentalAgreement, st *domain.EVCarState) error {
	args := m.Called(ctx, a, st)
	return args.Error(0)
}

func (m *MockNotifier) OverdueRentals(ctx context.Context, asOf int64, agreements []domain.RentalAgreement) error {
	args := m.Called(ctx, asOf, agreements)
	return args.Error(0)
}
