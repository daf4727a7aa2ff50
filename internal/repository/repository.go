package repository

import (
	"context"

	"ev-rental-ledger/internal/domain"
)

// AgreementRepository is the AgreementStore: rental agreements keyed by receipt number.
type AgreementRepository interface {
	// Insert adds a new agreement and fails with domain.ErrAlreadyExists if the
	// receipt number is taken. It never overwrites.
	Insert(ctx context.Context, agreement *domain.RentalAgreement) error
	Get(ctx context.Context, receiptNumber uint64) (*domain.RentalAgreement, error)
	// Update replaces an existing agreement and fails with domain.ErrNotFound if absent.
	Update(ctx context.Context, agreement *domain.RentalAgreement) error
	ListOpenDueBefore(ctx context.Context, asOf int64) ([]domain.RentalAgreement, error)
}

// EVStateRepository is the EVStateStore: one telemetry snapshot per VIN.
type EVStateRepository interface {
	Upsert(ctx context.Context, state *domain.EVCarState) error
	Get(ctx context.Context, vinNumber string) (*domain.EVCarState, error)
}

// Tx is the view of both stores inside one atomic transition.
type Tx interface {
	Agreements() AgreementRepository
	EVStates() EVStateRepository
}

// Store owns the two keyed stores. Atomically runs fn as a single all-or-nothing
// transition: if fn returns an error none of its writes are visible.
type Store interface {
	Tx
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}
