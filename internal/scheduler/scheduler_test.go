package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ev-rental-ledger/internal/config"
	"ev-rental-ledger/internal/jobs"
	"ev-rental-ledger/internal/repository/memory"
	"ev-rental-ledger/internal/service"
)

func newRunner(schedule string) *jobs.JobRunner {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{ReportOverdueRentals: schedule}}
	svc := service.NewRentalLedgerService(memory.New(), nil, nil)
	return jobs.NewJobRunner(svc, nil, cfg)
}

func TestNewScheduler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s, err := NewScheduler(newRunner("0 0 * * * *"))
		require.NoError(t, err)
		assert.True(t, s.IsRunning())

		s.Start()
		defer s.Stop()

		next, ok := s.NextRun("ReportOverdueRentals")
		require.True(t, ok)
		assert.Equal(t, time.UTC, next.Location())
		assert.Equal(t, 0, next.Minute())
		assert.Equal(t, 0, next.Second())
	})

	t.Run("InvalidSchedule", func(t *testing.T) {
		_, err := NewScheduler(newRunner("every hour"))
		assert.ErrorContains(t, err, "ReportOverdueRentals")
	})

	t.Run("UnknownJob", func(t *testing.T) {
		s, err := NewScheduler(newRunner("*/30 * * * * *"))
		require.NoError(t, err)
		_, ok := s.NextRun("Nope")
		assert.False(t, ok)
	})
}
