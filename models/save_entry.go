package models

import "time"

// SaveEntry is a single unsent save: the cause tag, the client-side creation
// timestamp, the month key resolved at creation time, and a deep copy of the
// payload. Entries are immutable once created; later mutation of the caller's
// in-memory payload cannot affect a queued entry.
//
// MonthKey is snapshotted here instead of being re-derived at write time so a
// delayed retry crossing a month boundary stays filed under the month the
// entry was created for.
type SaveEntry struct {
	Source          string    `json:"source"`
	ClientUpdatedAt time.Time `json:"clientUpdatedAt"`
	MonthKey        string    `json:"monthKey"`
	Payload         Payload   `json:"payload"`
}

// NewSaveEntry builds an immutable SaveEntry. The payload is deep-copied at
// construction time.
func NewSaveEntry(source string, payload Payload, monthKey string, at time.Time) SaveEntry {
	return SaveEntry{
		Source:          source,
		ClientUpdatedAt: at.UTC(),
		MonthKey:        monthKey,
		Payload:         payload.Clone(),
	}
}
