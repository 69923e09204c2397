package workers

import (
	"context"
	"sync"
	"time"

	"github.com/rmura/formsync/internal/config"
)

// Flusher drains the pending queue against the remote store. Implemented by
// the sync engine.
type Flusher interface {
	FlushPending(ctx context.Context) int
}

type flushJob struct {
	flusher  Flusher
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFlushJob creates a flushJob that calls flusher.FlushPending on a ticker.
// Intervals below the configured floor are raised to it so the remote store
// is never hammered. The job is idle until Start is called.
func NewFlushJob(flusher Flusher, interval time.Duration) FlushJob {
	if interval < config.MinAutoFlushInterval {
		interval = config.MinAutoFlushInterval
	}

	return &flushJob{flusher: flusher, interval: interval}
}

// Run implements [Worker]. It starts the job with a background context.
func (j *flushJob) Run() {
	j.Start(context.Background())
}

// Start stops any previously running job, then launches a background
// goroutine that flushes the pending queue every interval. The goroutine
// exits when ctx is cancelled or Stop is called.
func (j *flushJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_ = j.flusher.FlushPending(jobCtx)
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until the
// goroutine has fully exited. Safe to call when the job is not running
// (no-op in that case).
func (j *flushJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
