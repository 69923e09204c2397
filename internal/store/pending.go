package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/models"
)

const (
	pendingQueueKey = "pending_queue"

	// DefaultPendingLimit bounds the queue when no limit is configured.
	DefaultPendingLimit = 50
)

// PendingStore is the durable, bounded FIFO queue of save entries awaiting
// delivery. The whole queue is serialized to the KV on every mutation; no
// entry is ever mutated in place. Overflow drops the oldest entries first, so
// the store always keeps the most recent N.
type PendingStore struct {
	kv    KV
	limit int
	log   *logger.Logger

	mu sync.Mutex
}

// NewPendingStore builds a PendingStore over kv bounded at limit entries.
// A non-positive limit falls back to [DefaultPendingLimit].
func NewPendingStore(kv KV, limit int, log *logger.Logger) *PendingStore {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}

	return &PendingStore{kv: kv, limit: limit, log: log}
}

// Push appends entry, dropping from the front if the bound is exceeded, and
// persists the resulting queue. A persistence failure is returned but leaves
// the caller free to continue: the write already happened remotely or will be
// retried from a fresh queue.
func (s *PendingStore) Push(entry models.SaveEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.read()
	entries = append(entries, entry)
	if over := len(entries) - s.limit; over > 0 {
		s.log.Warn().Int("dropped", over).Msg("pending queue overflow, dropping oldest entries")
		entries = entries[over:]
	}

	return s.write(entries)
}

// ReadAll returns the current queue in FIFO order. Corrupted or unreadable
// storage reads as an empty queue rather than failing.
func (s *PendingStore) ReadAll() []models.SaveEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

// Replace atomically overwrites the stored queue with entries, used after a
// partial flush to keep only the entries that still failed.
func (s *PendingStore) Replace(entries []models.SaveEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(entries) > s.limit {
		entries = entries[len(entries)-s.limit:]
	}
	return s.write(entries)
}

// Reconcile replaces the entries a flush drained with the entries that still
// failed, while preserving anything pushed after the flush took its snapshot.
// read is the snapshot the flush worked from, remaining the subset that
// failed; entries present in storage but absent from read were queued
// mid-flush and are kept behind the failed ones.
func (s *PendingStore) Reconcile(read, remaining []models.SaveEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drained := make(map[string]int, len(read))
	for _, entry := range read {
		drained[entryKey(entry)]++
	}

	merged := make([]models.SaveEntry, 0, len(remaining))
	merged = append(merged, remaining...)
	for _, entry := range s.read() {
		key := entryKey(entry)
		if drained[key] > 0 {
			drained[key]--
			continue
		}
		merged = append(merged, entry)
	}

	if over := len(merged) - s.limit; over > 0 {
		merged = merged[over:]
	}
	return s.write(merged)
}

// entryKey renders an entry in its canonical stored form. Both sides of a
// reconcile have been through the same decode, so equal entries render to
// equal bytes (json.Marshal orders map keys).
func entryKey(entry models.SaveEntry) string {
	payload, err := json.Marshal(entry)
	if err != nil {
		return ""
	}
	return string(payload)
}

// Len returns the number of queued entries.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.read())
}

func (s *PendingStore) read() []models.SaveEntry {
	raw, ok, err := s.kv.Get(pendingQueueKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("read pending queue")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var entries []models.SaveEntry
	if err = json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Warn().Err(err).Msg("corrupt pending queue, starting empty")
		return nil
	}

	return entries
}

func (s *PendingStore) write(entries []models.SaveEntry) error {
	if entries == nil {
		entries = []models.SaveEntry{}
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode pending queue: %w", err)
	}
	if err = s.kv.Set(pendingQueueKey, string(payload)); err != nil {
		return fmt.Errorf("persist pending queue: %w", err)
	}

	return nil
}
