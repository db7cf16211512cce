// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PendingEnqueuer queues a sweep over favourites missing a description.
type PendingEnqueuer interface {
	EnqueuePendingBackfill(ctx context.Context) (string, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRun returns the next activation of schedule after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// BackfillScheduler periodically enqueues description backfill for favourites
// saved while the catalog was unreachable.
type BackfillScheduler struct {
	enqueuer PendingEnqueuer
	schedule string
	enabled  bool

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewBackfillScheduler creates a new scheduler instance.
func NewBackfillScheduler(enqueuer PendingEnqueuer, schedule string, enabled bool) *BackfillScheduler {
	return &BackfillScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		enabled:  enabled,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if backfill is enabled. It stops when ctx is done.
func (s *BackfillScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.enabled {
		log.Printf("[BACKFILL] Scheduler disabled")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.run(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backfill job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRun(s.schedule, time.Now())
	log.Printf("[BACKFILL] Scheduler started with schedule '%s'. Next run: %v", s.schedule, nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *BackfillScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[BACKFILL] Scheduler stopped")
}

// RunNow enqueues a sweep immediately and returns the task ID.
func (s *BackfillScheduler) RunNow(ctx context.Context) (string, error) {
	return s.enqueuer.EnqueuePendingBackfill(ctx)
}

// IsRunning returns whether the scheduler is active.
func (s *BackfillScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *BackfillScheduler) run(ctx context.Context) {
	taskID, err := s.enqueuer.EnqueuePendingBackfill(ctx)
	if err != nil {
		log.Printf("[BACKFILL] Failed to enqueue sweep: %v", err)
		return
	}
	log.Printf("[BACKFILL] Enqueued sweep (task %s)", taskID)
}
