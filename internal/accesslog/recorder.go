package accesslog

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	maxBatch      = 256
	flushInterval = time.Second
)

// Recorder queues hits from request goroutines and writes them in batches
// from a single goroutine. Record never blocks; hits are dropped when the
// queue is full.
type Recorder struct {
	store   *Store
	queue   chan Hit
	dropped atomic.Int64
	logger  *slog.Logger
}

// NewRecorder creates a recorder with the given queue size.
func NewRecorder(store *Store, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Recorder{
		store:  store,
		queue:  make(chan Hit, buffer),
		logger: slog.Default(),
	}
}

// Record enqueues h.
func (r *Recorder) Record(h Hit) {
	if h.At.IsZero() {
		h.At = time.Now()
	}
	select {
	case r.queue <- h:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many hits were discarded because the queue was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Run writes queued hits until ctx is cancelled, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Hit, 0, maxBatch)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := r.store.Insert(ctx, batch); err != nil {
			r.logger.Error("access log flush failed", "error", err, "hits", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case h := <-r.queue:
					batch = append(batch, h)
				default:
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					flush(shutdownCtx)
					cancel()
					return
				}
			}
		case h := <-r.queue:
			batch = append(batch, h)
			if len(batch) >= maxBatch {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}
