// Package adapter talks to the remote document store. Two backends exist:
// a REST store reached over HTTP and a SurrealDB instance reached over its
// WebSocket RPC. Both offer the same contract: merge-upsert of a field map
// keyed by a string document id, a server-assigned write timestamp, and an
// optional best-effort authentication step whose failure is tolerated.
package adapter

import "context"

// DocumentStore is the remote keyed document store consumed by the sync
// engine.
type DocumentStore interface {
	// EnsureReady lazily establishes the remote session. It is idempotent
	// and memoized: a cached success returns immediately, concurrent callers
	// share one in-flight bootstrap, and a failed attempt is retriable on
	// the next call.
	EnsureReady(ctx context.Context) error

	// Upsert writes fields into the document identified by documentID,
	// creating it if absent and merging fields if present. Concurrent
	// metadata added by the remote side between writes is not clobbered.
	// The store assigns the write timestamp.
	Upsert(ctx context.Context, documentID string, fields map[string]any) error

	// UserID returns the resolved remote identity, or "" when writes are
	// unauthenticated. Metadata only.
	UserID() string
}
