package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/repository"
)

// Store keeps both ledger stores in process memory. Transitions are serialized
// by a single lock so every writer observes the latest committed snapshot.
type Store struct {
	mu         sync.RWMutex
	agreements map[uint64]domain.RentalAgreement
	evStates   map[string]domain.EVCarState
}

func New() *Store {
	return &Store{
		agreements: make(map[uint64]domain.RentalAgreement),
		evStates:   make(map[string]domain.EVCarState),
	}
}

func (s *Store) Agreements() repository.AgreementRepository {
	return &agreementRepository{s: s}
}

func (s *Store) EVStates() repository.EVStateRepository {
	return &evStateRepository{s: s}
}

// Atomically stages all writes made by fn and publishes them only when fn succeeds.
func (s *Store) Atomically(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &stagedTx{
		base:       s,
		agreements: make(map[uint64]domain.RentalAgreement),
		evStates:   make(map[string]domain.EVCarState),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for k, v := range tx.agreements {
		s.agreements[k] = v
	}
	for k, v := range tx.evStates {
		s.evStates[k] = v
	}
	return nil
}

// Agreement store outside a transaction

type agreementRepository struct {
	s *Store
}

func (r *agreementRepository) Insert(_ context.Context, a *domain.RentalAgreement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.agreements[a.ReceiptNumber]; exists {
		return fmt.Errorf("receipt %d: %w", a.ReceiptNumber, domain.ErrAlreadyExists)
	}
	r.s.agreements[a.ReceiptNumber] = *a
	return nil
}

func (r *agreementRepository) Get(_ context.Context, receiptNumber uint64) (*domain.RentalAgreement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.agreements[receiptNumber]
	if !ok {
		return nil, fmt.Errorf("receipt %d: %w", receiptNumber, domain.ErrNotFound)
	}
	return &a, nil
}

func (r *agreementRepository) Update(_ context.Context, a *domain.RentalAgreement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.agreements[a.ReceiptNumber]; !ok {
		return fmt.Errorf("receipt %d: %w", a.ReceiptNumber, domain.ErrNotFound)
	}
	r.s.agreements[a.ReceiptNumber] = *a
	return nil
}

func (r *agreementRepository) ListOpenDueBefore(_ context.Context, asOf int64) ([]domain.RentalAgreement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return listOverdue(r.s.agreements, nil, asOf), nil
}

// EV state store outside a transaction

type evStateRepository struct {
	s *Store
}

func (r *evStateRepository) Upsert(_ context.Context, st *domain.EVCarState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.evStates[st.VINNumber] = *st
	return nil
}

func (r *evStateRepository) Get(_ context.Context, vinNumber string) (*domain.EVCarState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.evStates[vinNumber]
	if !ok {
		return nil, fmt.Errorf("vin %q: %w", vinNumber, domain.ErrNotFound)
	}
	return &st, nil
}

// stagedTx reads through pending writes to the committed maps. The caller of
// Atomically already holds the store lock.
type stagedTx struct {
	base       *Store
	agreements map[uint64]domain.RentalAgreement
	evStates   map[string]domain.EVCarState
}

func (tx *stagedTx) Agreements() repository.AgreementRepository { return txAgreements{tx} }
func (tx *stagedTx) EVStates() repository.EVStateRepository     { return txEVStates{tx} }

func (tx *stagedTx) agreement(receiptNumber uint64) (domain.RentalAgreement, bool) {
	if a, ok := tx.agreements[receiptNumber]; ok {
		return a, true
	}
	a, ok := tx.base.agreements[receiptNumber]
	return a, ok
}

type txAgreements struct{ tx *stagedTx }

func (r txAgreements) Insert(_ context.Context, a *domain.RentalAgreement) error {
	if _, exists := r.tx.agreement(a.ReceiptNumber); exists {
		return fmt.Errorf("receipt %d: %w", a.ReceiptNumber, domain.ErrAlreadyExists)
	}
	r.tx.agreements[a.ReceiptNumber] = *a
	return nil
}

func (r txAgreements) Get(_ context.Context, receiptNumber uint64) (*domain.RentalAgreement, error) {
	a, ok := r.tx.agreement(receiptNumber)
	if !ok {
		return nil, fmt.Errorf("receipt %d: %w", receiptNumber, domain.ErrNotFound)
	}
	return &a, nil
}

func (r txAgreements) Update(_ context.Context, a *domain.RentalAgreement) error {
	if _, ok := r.tx.agreement(a.ReceiptNumber); !ok {
		return fmt.Errorf("receipt %d: %w", a.ReceiptNumber, domain.ErrNotFound)
	}
	r.tx.agreements[a.ReceiptNumber] = *a
	return nil
}

func (r txAgreements) ListOpenDueBefore(_ context.Context, asOf int64) ([]domain.RentalAgreement, error) {
	return listOverdue(r.tx.base.agreements, r.tx.agreements, asOf), nil
}

type txEVStates struct{ tx *stagedTx }

func (r txEVStates) Upsert(_ context.Context, st *domain.EVCarState) error {
	r.tx.evStates[st.VINNumber] = *st
	return nil
}

func (r txEVStates) Get(_ context.Context, vinNumber string) (*domain.EVCarState, error) {
	if st, ok := r.tx.evStates[vinNumber]; ok {
		return &st, nil
	}
	st, ok := r.tx.base.evStates[vinNumber]
	if !ok {
		return nil, fmt.Errorf("vin %q: %w", vinNumber, domain.ErrNotFound)
	}
	return &st, nil
}

// listOverdue merges pending over committed and returns overdue agreements by receipt.
func listOverdue(committed, pending map[uint64]domain.RentalAgreement, asOf int64) []domain.RentalAgreement {
	var out []domain.RentalAgreement
	for k, a := range committed {
		if p, ok := pending[k]; ok {
			a = p
		}
		if a.IsOverdue(asOf) {
			out = append(out, a)
		}
	}
	for k, a := range pending {
		if _, seen := committed[k]; !seen && a.IsOverdue(asOf) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceiptNumber < out[j].ReceiptNumber })
	return out
}
