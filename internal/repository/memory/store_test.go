package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/repository"
)

func agreement(receipt uint64, returnAt int64) *domain.RentalAgreement {
	return &domain.RentalAgreement{
		ReceiptNumber:  receipt,
		RentalDateTime: 1000,
		VINNumber:      "1ABC234DEF567GHI89",
		ReturnDateTime: returnAt,
		CostPerDay:     100,
	}
}

func TestAgreements_InsertIfAbsent(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Agreements().Insert(ctx, agreement(1, 2000)))

	dup := agreement(1, 9999)
	err := s.Agreements().Insert(ctx, dup)
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))

	got, err := s.Agreements().Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.ReturnDateTime)
}

func TestAgreements_GetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Agreements().Insert(ctx, agreement(1, 2000)))

	got, err := s.Agreements().Get(ctx, 1)
	require.NoError(t, err)
	got.Closed = true

	again, err := s.Agreements().Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, again.Closed)
}

func TestAgreements_UpdateMissing(t *testing.T) {
	s := New()
	err := s.Agreements().Update(context.Background(), agreement(7, 0))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestEVStates_Upsert(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.EVStates().Get(ctx, "VIN1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, s.EVStates().Upsert(ctx, &domain.EVCarState{VINNumber: "VIN1", BatteryState: domain.BatteryState{BatteryLevel: 60}}))
	require.NoError(t, s.EVStates().Upsert(ctx, &domain.EVCarState{VINNumber: "VIN1", BatteryState: domain.BatteryState{BatteryLevel: 40}}))

	got, err := s.EVStates().Get(ctx, "VIN1")
	require.NoError(t, err)
	assert.Equal(t, uint32(40), got.BatteryLevel)
}

func TestAtomically_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Agreements().Insert(ctx, agreement(1, 2000)))

	boom := errors.New("boom")
	err := s.Atomically(ctx, func(tx repository.Tx) error {
		a, err := tx.Agreements().Get(ctx, 1)
		if err != nil {
			return err
		}
		a.Closed = true
		if err := tx.Agreements().Update(ctx, a); err != nil {
			return err
		}
		if err := tx.EVStates().Upsert(ctx, &domain.EVCarState{VINNumber: a.VINNumber}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Agreements().Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, got.Closed)
	_, err = s.EVStates().Get(ctx, "1ABC234DEF567GHI89")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAtomically_ReadsOwnWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Atomically(ctx, func(tx repository.Tx) error {
		if err := tx.Agreements().Insert(ctx, agreement(5, 100)); err != nil {
			return err
		}
		got, err := tx.Agreements().Get(ctx, 5)
		if err != nil {
			return err
		}
		assert.Equal(t, uint64(5), got.ReceiptNumber)

		err = tx.Agreements().Insert(ctx, agreement(5, 100))
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
		return nil
	})
	require.NoError(t, err)

	_, err = s.Agreements().Get(ctx, 5)
	assert.NoError(t, err)
}

func TestAtomically_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Atomically(ctx, func(tx repository.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestListOpenDueBefore(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Agreements().Insert(ctx, agreement(3, 500)))
	require.NoError(t, s.Agreements().Insert(ctx, agreement(1, 100)))
	require.NoError(t, s.Agreements().Insert(ctx, agreement(2, 5000)))
	closed := agreement(4, 50)
	closed.Closed = true
	require.NoError(t, s.Agreements().Insert(ctx, closed))

	got, err := s.Agreements().ListOpenDueBefore(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ReceiptNumber)
	assert.Equal(t, uint64(3), got[1].ReceiptNumber)
}
