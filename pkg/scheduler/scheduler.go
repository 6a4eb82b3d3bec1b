// Package scheduler runs background maintenance jobs at fixed intervals.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job represents a scheduled task.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs jobs at their configured intervals.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
}

// New creates a new scheduler.
func New() *Scheduler {
	return &Scheduler{logger: slog.Default()}
}

// Add registers a job with the scheduler. Jobs without a positive interval
// only run through RunOnce.
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// RunOnce executes all registered jobs once, continuing past failures, and
// returns the first error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var first error
	for _, job := range s.jobs {
		if err := s.run(ctx, job); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Start runs every job immediately and then on its interval until ctx is
// cancelled. It blocks.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", "jobs", len(s.jobs))

	var wg sync.WaitGroup
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			continue
		}
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			_ = s.run(ctx, job)

			ticker := time.NewTicker(job.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_ = s.run(ctx, job)
				}
			}
		}(job)
	}
	wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	start := time.Now()
	if err := job.Fn(ctx); err != nil {
		s.logger.Error("job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return err
	}
	s.logger.Debug("job completed", "name", job.Name, "duration", time.Since(start))
	return nil
}
