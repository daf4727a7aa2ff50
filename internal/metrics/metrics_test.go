package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"ev-rental-ledger/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ResultOK},
		{"not_found", fmt.Errorf("receipt 1: %w", domain.ErrNotFound), ResultNotFound},
		{"already_exists", domain.ErrAlreadyExists, ResultAlreadyExists},
		{"already_closed", domain.ErrAlreadyClosed, ResultAlreadyClosed},
		{"invalid_input", domain.ErrInvalidInput, ResultInvalidInput},
		{"unknown", errors.New("boom"), ResultError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestLedgerMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.Observe("create_rental_agreement", time.Now(), nil)
	m.Observe("create_rental_agreement", time.Now(), domain.ErrAlreadyExists)
	m.Observe("create_rental_agreement", time.Now(), nil)
	m.SetOverdue(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("create_rental_agreement", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create_rental_agreement", ResultAlreadyExists)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.overdue))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestLedgerMetrics_NilIsNoop(t *testing.T) {
	var m *LedgerMetrics
	assert.NotPanics(t, func() {
		m.Observe("get_ev_car_state", time.Now(), nil)
		m.SetOverdue(1)
	})
}
