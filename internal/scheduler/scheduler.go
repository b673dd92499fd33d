// Package scheduler runs a job on a cron schedule, never overlapping runs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled execution.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse validates a five-field cron expression or a descriptor such as
// "@daily" or "@every 6h".
func Parse(expr string) (cron.Schedule, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return sched, nil
}

// Scheduler fires a Job at each tick of a schedule. A tick that arrives
// while the previous run is still going is skipped.
type Scheduler struct {
	schedule cron.Schedule
	job      Job
	log      *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup
	runs    atomic.Int64
	skipped atomic.Int64
}

// New creates a scheduler for expr.
func New(expr string, job Job, log *slog.Logger) (*Scheduler, error) {
	sched, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{schedule: sched, job: job, log: log}, nil
}

// Next returns the first activation time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Runs returns how many times the job has been started.
func (s *Scheduler) Runs() int64 { return s.runs.Load() }

// Skipped returns how many ticks were dropped because a run was in progress.
func (s *Scheduler) Skipped() int64 { return s.skipped.Load() }

// Run blocks, firing the job at each activation, until ctx is done. It then
// waits for an in-flight job to return; the job sees the cancelled context.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.wg.Wait()

	for {
		next := s.schedule.Next(time.Now())
		if next.IsZero() {
			return fmt.Errorf("schedule has no future activations")
		}
		s.log.Info("next scheduled scan", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			s.trigger(ctx)
		}
	}
}

// trigger starts the job unless one is already running. It reports whether
// a run was started.
func (s *Scheduler) trigger(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.log.Warn("previous scan still running, skipping tick")
		return false
	}
	s.runs.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		start := time.Now()
		if err := s.job(ctx); err != nil {
			s.log.Error("scheduled scan failed", "error", err, "elapsed", time.Since(start))
			return
		}
		s.log.Info("scheduled scan finished", "elapsed", time.Since(start))
	}()
	return true
}
