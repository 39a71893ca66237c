package services

import (
	"context"
	"sync"
	"time"

	"github.com/l8testudy/drivevault/internal/core/ports/driving"
	"github.com/l8testudy/drivevault/internal/logger"
)

// Scheduler runs full sync sweeps on a fixed interval. It is the watch
// mode behind the CLI: one sweep immediately on start, then one per
// interval until the context is cancelled or Stop is called.
type Scheduler struct {
	syncer   driving.Syncer
	interval time.Duration

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	lastRun  time.Time
	lastErrs int
}

// NewScheduler creates a scheduler sweeping at the given interval.
func NewScheduler(syncer driving.Syncer, interval time.Duration) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
	}
}

// Start begins the sweep loop and blocks until the context is cancelled
// or Stop is called. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop shuts the scheduler down and waits for an in-flight sweep to
// finish. Safe to call on a stopped scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

// LastRun reports when the most recent sweep started and how many
// folders failed during it.
func (s *Scheduler) LastRun() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErrs
}

func (s *Scheduler) sweep(ctx context.Context) {
	started := time.Now()

	s.wg.Add(1)
	defer s.wg.Done()

	report, err := s.syncer.SyncAll(ctx)

	failed := 0
	if report != nil {
		failed = report.FailedFolders
	}
	if err != nil {
		logger.Warn("scheduler: sweep failed: %v", err)
		failed++
	} else {
		logger.Info("scheduler: sweep done, %d/%d folders synced",
			report.SyncedFolders, report.TotalFolders)
	}

	s.mu.Lock()
	s.lastRun = started
	s.lastErrs = failed
	s.mu.Unlock()
}
