// Package service contains the sync engine: debounced save scheduling,
// remote merge-upserts keyed by derived document identity, the
// queue-on-failure fallback, and the serialized flush of the pending queue.
//
// A logical save moves through idle → debounced → writing → committed or
// queued-for-retry. All public operations report a status instead of raising;
// the engine is a background subsystem and never interrupts the host
// application's primary flow.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rmura/formsync/internal/adapter"
	"github.com/rmura/formsync/internal/config"
	"github.com/rmura/formsync/internal/identity"
	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/internal/store"
	"github.com/rmura/formsync/models"
)

// Options wires an Engine. Store may be nil when the remote is unconfigured;
// the engine then stays inert and reports "disabled".
type Options struct {
	Enabled       bool
	DebounceDelay time.Duration

	Source   PayloadSource
	Store    adapter.DocumentStore
	Pending  *store.PendingStore
	Device   *store.DeviceIdentity
	Resolver *identity.Resolver
	Log      *logger.Logger

	// Now is a clock seam for tests; defaults to time.Now.
	Now func() time.Time
}

// Engine owns all sync state explicitly: the shared debounce timer, the flush
// re-entrancy flag and the injected collaborators. One Engine is constructed
// per process; there are no ambient globals.
type Engine struct {
	enabled  bool
	debounce time.Duration

	source   PayloadSource
	store    adapter.DocumentStore
	pending  *store.PendingStore
	device   *store.DeviceIdentity
	resolver *identity.Resolver
	log      *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	timer    *time.Timer
	flushing atomic.Bool
}

// NewEngine constructs the engine. Sync is active only when opts.Enabled is
// set and every required collaborator is present; otherwise the engine is
// built inert and every operation reports "disabled".
func NewEngine(opts Options) *Engine {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = config.DefaultDebounceDelay
	}

	enabled := opts.Enabled
	switch {
	case opts.Source == nil:
		enabled = false
		opts.Log.Warn().Msg("no payload source, sync disabled")
	case opts.Store == nil:
		enabled = false
		opts.Log.Warn().Msg("no remote store, sync disabled")
	case opts.Pending == nil || opts.Resolver == nil:
		enabled = false
		opts.Log.Warn().Msg("incomplete wiring, sync disabled")
	}

	return &Engine{
		enabled:  enabled,
		debounce: opts.DebounceDelay,
		source:   opts.Source,
		store:    opts.Store,
		pending:  opts.Pending,
		device:   opts.Device,
		resolver: opts.Resolver,
		log:      opts.Log,
		now:      opts.Now,
	}
}

// IsEnabled reports whether sync is active.
func (e *Engine) IsEnabled() bool {
	return e.enabled
}

// Schedule requests a debounced save. Each call resets the single shared
// timer; only the timer's eventual firing triggers a write, coalescing rapid
// successive triggers into one remote write. The payload is captured when the
// timer fires, not when Schedule is called.
func (e *Engine) Schedule(source string) {
	if !e.enabled {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(e.debounce, func() {
		e.mu.Lock()
		// A Schedule call can slip in between this timer firing and the
		// callback taking the lock; only clear the reference if it is
		// still ours.
		if e.timer == t {
			e.timer = nil
		}
		e.mu.Unlock()

		e.SaveNow(context.Background(), source)
	})
	e.timer = t
}

// SaveNow bypasses the debounce and attempts an immediate save, reporting
// only success. Used for explicit user actions.
func (e *Engine) SaveNow(ctx context.Context, source string) bool {
	return e.SaveNowDetailed(ctx, source).OK
}

// SaveNowDetailed bypasses the debounce and attempts an immediate save.
// On failure the entry is queued for retry and the result carries the typed
// reason; on success the pending queue is opportunistically flushed, since
// connectivity just proved available.
func (e *Engine) SaveNowDetailed(ctx context.Context, source string) models.SaveResult {
	if !e.enabled {
		return models.SaveResult{Reason: models.ReasonDisabled}
	}

	payload := e.source.CurrentPayload()
	if payload == nil {
		e.log.Warn().Str("source", source).Msg("payload source returned nothing")
		return models.SaveResult{Reason: models.ReasonPayloadMissing}
	}

	now := e.now()
	entry := models.NewSaveEntry(source, payload, identity.MonthKey(payload, now), now)

	res := e.write(ctx, entry)
	if res.OK {
		e.FlushPending(ctx)
	}
	return res
}

// FlushPending drains the pending queue front-to-back, upserting each entry.
// Entries that fail are carried into a new remaining queue in order; entries
// that succeed are dropped. The stored queue is then reconciled against the
// snapshot this flush read, so partial progress survives and entries queued
// while the flush was running are kept.
//
// Flushes are serialized: a call while another flush is running is a no-op.
// Returns the number of entries delivered.
func (e *Engine) FlushPending(ctx context.Context) int {
	if !e.enabled {
		return 0
	}
	if !e.flushing.CompareAndSwap(false, true) {
		return 0
	}
	defer e.flushing.Store(false)

	entries := e.pending.ReadAll()
	if len(entries) == 0 {
		return 0
	}

	if err := e.store.EnsureReady(ctx); err != nil {
		e.log.Debug().Err(err).Msg("remote session not ready, keeping pending queue")
		return 0
	}

	remaining := make([]models.SaveEntry, 0, len(entries))
	delivered := 0
	for _, entry := range entries {
		if err := e.upsert(ctx, entry); err != nil {
			e.log.Debug().Err(err).Str("source", entry.Source).Msg("flush upsert failed")
			remaining = append(remaining, entry)
			continue
		}
		delivered++
	}

	if err := e.pending.Reconcile(entries, remaining); err != nil {
		e.log.Warn().Err(err).Msg("persist remaining queue")
	}

	e.log.Info().
		Int("delivered", delivered).
		Int("remaining", len(remaining)).
		Msg("pending queue flushed")

	return delivered
}

// NotifyOnline is the network-restored trigger: connectivity is back, so the
// backlog is flushed.
func (e *Engine) NotifyOnline(ctx context.Context) {
	e.log.Debug().Msg("network restored")
	e.FlushPending(ctx)
}

// NotifyVisible is the visibility-restored trigger (the host window or tab
// became active again).
func (e *Engine) NotifyVisible(ctx context.Context) {
	e.log.Debug().Msg("visibility restored")
	e.FlushPending(ctx)
}

// PreviewDocInfo computes the document identity the next save would use,
// without writing. Diagnostics only.
func (e *Engine) PreviewDocInfo() (models.DocInfo, bool) {
	if !e.enabled {
		return models.DocInfo{}, false
	}

	payload := e.source.CurrentPayload()
	if payload == nil {
		return models.DocInfo{}, false
	}

	now := e.now()
	entry := models.NewSaveEntry("preview", payload, identity.MonthKey(payload, now), now)
	return e.resolver.Resolve(entry), true
}

// write performs one remote upsert attempt for entry, queueing it on any
// failure. Control always returns to the caller; nothing blocks beyond the
// store's own request timeout.
func (e *Engine) write(ctx context.Context, entry models.SaveEntry) models.SaveResult {
	if err := e.store.EnsureReady(ctx); err != nil {
		e.log.Debug().Err(err).Msg("remote session not ready")
		return models.SaveResult{Reason: models.ReasonStoreUnready, Queued: e.queue(entry)}
	}

	if err := e.upsert(ctx, entry); err != nil {
		reason := models.ReasonWriteFailed
		if errors.Is(err, adapter.ErrOffline) {
			reason = models.ReasonOffline
		}
		e.log.Debug().Err(err).Str("source", entry.Source).Msg("remote write failed")
		return models.SaveResult{Reason: reason, Queued: e.queue(entry)}
	}

	return models.SaveResult{OK: true}
}

// upsert resolves the entry's identity and writes the full payload plus
// recomputed identity metadata. The remote store merges fields rather than
// replacing the document, and assigns the write timestamp itself.
func (e *Engine) upsert(ctx context.Context, entry models.SaveEntry) error {
	info := e.resolver.Resolve(entry)

	fields := map[string]any{
		"payload":         entry.Payload,
		"monthKey":        info.MonthKey,
		"basicInfo":       info.BasicInfo,
		"signature":       info.Signature,
		"source":          entry.Source,
		"clientUpdatedAt": entry.ClientUpdatedAt.Format(time.RFC3339),
	}
	if e.device != nil {
		fields["deviceId"] = e.device.ID()
	}
	if uid := e.store.UserID(); uid != "" {
		fields["userId"] = uid
	}

	return e.store.Upsert(ctx, info.DocumentID, fields)
}

func (e *Engine) queue(entry models.SaveEntry) bool {
	if err := e.pending.Push(entry); err != nil {
		e.log.Warn().Err(err).Msg("queue save entry")
		return false
	}
	return true
}
