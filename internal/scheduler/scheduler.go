package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"ev-rental-ledger/internal/jobs"
	"ev-rental-ledger/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron    *cron.Cron
	jobs    *jobs.JobRunner
	entries map[string]cron.EntryID
}

// NewScheduler creates a new scheduler with the provided job runner.
// An invalid cron expression is reported rather than silently skipped.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// UTC with seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:    c,
		jobs:    jobRunner,
		entries: make(map[string]cron.EntryID),
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	if err := s.register("ReportOverdueRentals", cfg.ReportOverdueRentals, s.jobs.ReportOverdueRentals); err != nil {
		return err
	}

	logger.Info("All cron jobs registered successfully", "count", len(s.entries))
	return nil
}

func (s *Scheduler) register(name, schedule string, fn func()) error {
	id, err := s.cron.AddFunc(schedule, fn)
	if err != nil {
		logger.Error("Failed to register job", "job", name, "schedule", schedule, "error", err)
		return fmt.Errorf("failed to register %s job: %w", name, err)
	}
	s.entries[name] = id
	logger.Debug("Registered job", "job", name, "schedule", schedule)
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// NextRun reports when the named job fires next. ok is false for unknown jobs.
func (s *Scheduler) NextRun(name string) (next time.Time, ok bool) {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// IsRunning returns true if the scheduler has registered jobs
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
