package adapter

import (
	"context"
	"sync"
)

// bootstrap memoizes an async initialization. A cached success short-circuits,
// concurrent callers share the same in-flight attempt instead of starting
// duplicates, and completion (success or failure) clears the in-flight marker
// so a later call can retry.
type bootstrap struct {
	mu       sync.Mutex
	ready    bool
	inflight chan struct{}
	lastErr  error
}

// ensure runs fn at most once concurrently. Callers joining an in-flight
// attempt block until it completes (or their ctx is cancelled) and observe
// its outcome.
func (b *bootstrap) ensure(ctx context.Context, fn func(context.Context) error) error {
	b.mu.Lock()
	if b.ready {
		b.mu.Unlock()
		return nil
	}
	if b.inflight != nil {
		done := b.inflight
		b.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.ready {
			return nil
		}
		return b.lastErr
	}

	done := make(chan struct{})
	b.inflight = done
	b.mu.Unlock()

	err := fn(ctx)

	b.mu.Lock()
	b.ready = err == nil
	b.lastErr = err
	b.inflight = nil
	b.mu.Unlock()
	close(done)

	return err
}
