package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunOnce_ContinuesAfterFailure(t *testing.T) {
	s := New()
	var ran atomic.Int32
	boom := errors.New("boom")
	s.Add(Job{Name: "fails", Fn: func(context.Context) error { ran.Add(1); return boom }})
	s.Add(Job{Name: "works", Fn: func(context.Context) error { ran.Add(1); return nil }})

	if err := s.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if ran.Load() != 2 {
		t.Fatalf("expected both jobs to run, got %d", ran.Load())
	}
}

func TestStart_RunsUntilCancelled(t *testing.T) {
	s := New()
	var ticks atomic.Int32
	s.Add(Job{Name: "tick", Interval: 10 * time.Millisecond, Fn: func(context.Context) error {
		ticks.Add(1)
		return nil
	}})
	s.Add(Job{Name: "manual-only", Fn: func(context.Context) error {
		t.Error("job without interval must not be started")
		return nil
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	if ticks.Load() < 2 {
		t.Fatalf("expected repeated runs, got %d", ticks.Load())
	}
}
