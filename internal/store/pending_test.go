package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/models"
)

func entryWithDriver(name string) models.SaveEntry {
	payload := models.Payload{"current": map[string]any{"driverName": name}}
	return models.NewSaveEntry("test", payload, "2025-03", time.Now())
}

func driverOf(e models.SaveEntry) string {
	return e.Payload.Section("current").Text("driverName")
}

func TestPendingStore_PushAndReadAll_FIFO(t *testing.T) {
	s := NewPendingStore(NewMemoryKV(), 10, logger.Nop())

	require.NoError(t, s.Push(entryWithDriver("A")))
	require.NoError(t, s.Push(entryWithDriver("B")))
	require.NoError(t, s.Push(entryWithDriver("C")))

	entries := s.ReadAll()
	require.Len(t, entries, 3)
	assert.Equal(t, "A", driverOf(entries[0]))
	assert.Equal(t, "B", driverOf(entries[1]))
	assert.Equal(t, "C", driverOf(entries[2]))
}

func TestPendingStore_BoundDropsOldestFirst(t *testing.T) {
	const limit = 3
	s := NewPendingStore(NewMemoryKV(), limit, logger.Nop())

	for _, name := range []string{"A", "B", "C", "D"} {
		require.NoError(t, s.Push(entryWithDriver(name)))
	}

	entries := s.ReadAll()
	require.Len(t, entries, limit)
	assert.Equal(t, "B", driverOf(entries[0]))
	assert.Equal(t, "C", driverOf(entries[1]))
	assert.Equal(t, "D", driverOf(entries[2]))
}

func TestPendingStore_Replace(t *testing.T) {
	s := NewPendingStore(NewMemoryKV(), 10, logger.Nop())
	require.NoError(t, s.Push(entryWithDriver("A")))
	require.NoError(t, s.Push(entryWithDriver("B")))
	require.NoError(t, s.Push(entryWithDriver("C")))

	require.NoError(t, s.Replace([]models.SaveEntry{entryWithDriver("B")}))

	entries := s.ReadAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "B", driverOf(entries[0]))

	require.NoError(t, s.Replace(nil))
	assert.Equal(t, 0, s.Len())
}

func TestPendingStore_ReconcileKeepsEntriesQueuedMidFlush(t *testing.T) {
	s := NewPendingStore(NewMemoryKV(), 10, logger.Nop())
	require.NoError(t, s.Push(entryWithDriver("A")))
	require.NoError(t, s.Push(entryWithDriver("B")))

	snapshot := s.ReadAll()
	require.Len(t, snapshot, 2)

	// A flush is draining the snapshot; a fresh entry lands meanwhile.
	require.NoError(t, s.Push(entryWithDriver("C")))

	// A delivered, B still failing.
	require.NoError(t, s.Reconcile(snapshot, snapshot[1:]))

	entries := s.ReadAll()
	require.Len(t, entries, 2)
	assert.Equal(t, "B", driverOf(entries[0]))
	assert.Equal(t, "C", driverOf(entries[1]))
}

func TestPendingStore_ReconcileFullyDrainedLeavesOnlyNewEntries(t *testing.T) {
	s := NewPendingStore(NewMemoryKV(), 10, logger.Nop())
	require.NoError(t, s.Push(entryWithDriver("A")))

	snapshot := s.ReadAll()
	require.NoError(t, s.Push(entryWithDriver("B")))
	require.NoError(t, s.Reconcile(snapshot, nil))

	entries := s.ReadAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "B", driverOf(entries[0]))

	require.NoError(t, s.Reconcile(entries, nil))
	assert.Equal(t, 0, s.Len())
}

func TestPendingStore_SurvivesReopen(t *testing.T) {
	kv := NewMemoryKV()

	first := NewPendingStore(kv, 10, logger.Nop())
	require.NoError(t, first.Push(entryWithDriver("A")))

	second := NewPendingStore(kv, 10, logger.Nop())
	entries := second.ReadAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "A", driverOf(entries[0]))
}

func TestPendingStore_CorruptStorageReadsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(pendingQueueKey, "{not json"))

	s := NewPendingStore(kv, 10, logger.Nop())
	assert.Empty(t, s.ReadAll())

	// A push after corruption starts a fresh queue.
	require.NoError(t, s.Push(entryWithDriver("A")))
	assert.Equal(t, 1, s.Len())
}

func TestPendingStore_DefaultLimit(t *testing.T) {
	s := NewPendingStore(NewMemoryKV(), 0, logger.Nop())
	assert.Equal(t, DefaultPendingLimit, s.limit)
}
