package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/repository"
)

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

// MockStore delegates the repositories to the embedded store but lets tests fail Atomically.
type MockStore struct {
	mock.Mock
	repository.Store
}

func (m *MockStore) Atomically(ctx context.Context, fn func(tx repository.Tx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return m.Store.Atomically(ctx, fn)
}
