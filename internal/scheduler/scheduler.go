package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultInterval is the nominal auto-refresh period.
const DefaultInterval = 30 * time.Second

// AutoRefresh drives a job on a fixed interval while enabled.
// It owns its cron instance: Enable/Disable add and remove the schedule
// entry, Close stops cron for good and waits for a running job to finish.
type AutoRefresh struct {
	Cron     *cron.Cron
	Interval time.Duration
	Job      func()
	Logger   *log.Logger

	mu      sync.Mutex
	entry   cron.EntryID
	enabled bool
	closed  bool
}

// New creates an AutoRefresh. Overlapping ticks are skipped while a previous
// run is still in progress.
func New(interval time.Duration, job func(), logger *log.Logger) *AutoRefresh {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	l := cron.PrintfLogger(logger)
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	c.Start()
	return &AutoRefresh{Cron: c, Interval: interval, Job: job, Logger: logger}
}

// Enable schedules the job. It is a no-op when already enabled or closed.
func (a *AutoRefresh) Enable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled || a.closed {
		return
	}
	a.entry = a.Cron.Schedule(cron.Every(a.Interval), cron.FuncJob(a.Job))
	a.enabled = true
	a.Logger.Printf("auto-refresh enabled (every %s)", a.Interval)
}

// Disable removes the schedule. A job already running is left to finish.
func (a *AutoRefresh) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return
	}
	a.Cron.Remove(a.entry)
	a.enabled = false
	a.Logger.Println("auto-refresh disabled")
}

// Enabled reports whether the job is scheduled.
func (a *AutoRefresh) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Close stops the scheduler and blocks until a running job returns or ctx ends.
// Safe to call more than once.
func (a *AutoRefresh) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.enabled = false
	a.mu.Unlock()

	done := a.Cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
