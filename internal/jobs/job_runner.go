package jobs

import (
	"context"
	"time"

	"ev-rental-ledger/internal/config"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/notification"
	"ev-rental-ledger/internal/service"
)

// defaultJobTimeout bounds a single job execution.
const defaultJobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	ledger   service.RentalLedgerService
	notifier notification.Notifier
	config   *config.Config
	now      func() time.Time
	timeout  time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(ledger service.RentalLedgerService, notifier notification.Notifier, cfg *config.Config) *JobRunner {
	if notifier == nil {
		notifier = notification.NewLogNotifier()
	}
	return &JobRunner{
		ledger:   ledger,
		notifier: notifier,
		config:   cfg,
		now:      time.Now,
		timeout:  defaultJobTimeout,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// RunAll runs every registered job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ReportOverdueRentals()
}
