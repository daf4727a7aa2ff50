package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/logger"
)

// ErrQueueFull is returned when a notification cannot be buffered.
var ErrQueueFull = errors.New("notification queue is full")

// ErrQueueStopped is returned for notifications submitted after Stop.
var ErrQueueStopped = errors.New("notification queue is stopped")

type notificationJob struct {
	name    string
	attempt int
	deliver func(ctx context.Context) error
}

// QueuedNotifier hands notifications to a pool of workers so callers never
// wait on the delivery backend. Failed deliveries are retried with quadratic
// backoff up to maxRetries times, then dropped with an error log.
type QueuedNotifier struct {
	next       Notifier
	jobs       chan notificationJob
	workers    int
	maxRetries int
	backoff    func(attempt int) time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewQueuedNotifier(next Notifier, workers, queueSize, maxRetries int) *QueuedNotifier {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &QueuedNotifier{
		next:       next,
		jobs:       make(chan notificationJob, queueSize),
		workers:    workers,
		maxRetries: maxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the workers.
func (q *QueuedNotifier) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop refuses new notifications and waits for queued ones to be delivered.
// When ctx expires first, pending retries are abandoned and ctx.Err is returned.
func (q *QueuedNotifier) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *QueuedNotifier) RentalReturned(_ context.Context, a *domain.RentalAgreement, st *domain.EVCarState) error {
	agreement, state := *a, *st
	return q.enqueue("RentalReturned", func(ctx context.Context) error {
		return q.next.RentalReturned(ctx, &agreement, &state)
	})
}

func (q *QueuedNotifier) OverdueRentals(_ context.Context, asOf int64, agreements []domain.RentalAgreement) error {
	list := append([]domain.RentalAgreement(nil), agreements...)
	return q.enqueue("OverdueRentals", func(ctx context.Context) error {
		return q.next.OverdueRentals(ctx, asOf, list)
	})
}

func (q *QueuedNotifier) enqueue(name string, deliver func(ctx context.Context) error) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueStopped
	}
	select {
	case q.jobs <- notificationJob{name: name, deliver: deliver}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *QueuedNotifier) worker(id int) {
	defer q.wg.Done()
	logger.Debug("Notification worker started", "worker", id)

	for job := range q.jobs {
		q.process(job)
	}
	logger.Debug("Notification worker stopped", "worker", id)
}

func (q *QueuedNotifier) process(job notificationJob) {
	for {
		if q.ctx.Err() != nil {
			logger.Warn("Dropping notification on shutdown", "notification", job.name, "attempt", job.attempt)
			return
		}
		err := job.deliver(q.ctx)
		if err == nil {
			return
		}
		if job.attempt >= q.maxRetries {
			logger.Error("Notification failed after retries", "notification", job.name, "retries", job.attempt, "error", err)
			return
		}
		job.attempt++
		wait := q.backoff(job.attempt)
		logger.Warn("Retrying notification", "notification", job.name, "attempt", job.attempt, "max_retries", q.maxRetries, "backoff", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-q.ctx.Done():
			timer.Stop()
		}
	}
}
