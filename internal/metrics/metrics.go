package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ev-rental-ledger/internal/domain"
)

const (
	ResultOK            = "ok"
	ResultNotFound      = "not_found"
	ResultAlreadyExists = "already_exists"
	ResultAlreadyClosed = "already_closed"
	ResultInvalidInput  = "invalid_input"
	ResultError         = "error"
)

// LedgerMetrics counts ledger operations by outcome. A nil *LedgerMetrics is a no-op.
type LedgerMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	overdue    prometheus.Gauge
}

func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "operations_total",
			Help:      "Rental ledger operations by operation and result.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Rental ledger operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		overdue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger",
			Name:      "overdue_agreements",
			Help:      "Open agreements past their scheduled return time at the last report.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.duration, m.overdue)
	}
	return m
}

// Observe records one finished operation.
func (m *LedgerMetrics) Observe(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Classify(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// SetOverdue records the size of the last overdue report.
func (m *LedgerMetrics) SetOverdue(n int) {
	if m == nil {
		return
	}
	m.overdue.Set(float64(n))
}

// Classify maps an error to its result label.
func Classify(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return ResultAlreadyExists
	case errors.Is(err, domain.ErrAlreadyClosed):
		return ResultAlreadyClosed
	case errors.Is(err, domain.ErrInvalidInput):
		return ResultInvalidInput
	default:
		return ResultError
	}
}
