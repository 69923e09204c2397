// Package store holds the client-side durable state: a small key-value
// abstraction over local storage, the bounded pending queue of unsent saves,
// and the persisted-once device identity token.
//
// Local persistence is an optimization, not a correctness requirement:
// losing the stored state is acceptable degraded behavior, so callers treat
// storage failures as non-fatal.
package store

// KV is the local durable storage contract: string key-value with get/set.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error
	// Close releases the underlying storage handle.
	Close() error
}
