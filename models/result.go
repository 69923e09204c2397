package models

// SaveReason classifies the outcome of a save attempt. Public engine
// operations report a reason instead of raising: this is a background
// subsystem and must never interrupt the host application's primary flow.
type SaveReason string

const (
	// ReasonDisabled means sync is turned off or not fully configured.
	ReasonDisabled SaveReason = "disabled"
	// ReasonPayloadMissing means the payload source returned nothing.
	ReasonPayloadMissing SaveReason = "payload_missing"
	// ReasonStoreUnready means the remote session could not be established;
	// the entry was queued for a later flush.
	ReasonStoreUnready SaveReason = "store_unready"
	// ReasonOffline means the write failed with a network-level error;
	// the entry was queued for a later flush.
	ReasonOffline SaveReason = "offline"
	// ReasonWriteFailed means the remote store rejected or failed the write;
	// the entry was queued for a later flush.
	ReasonWriteFailed SaveReason = "write_failed"
)

// SaveResult is the detailed outcome of a save attempt.
type SaveResult struct {
	// OK reports whether the entry reached the remote store.
	OK bool `json:"ok"`
	// Reason is set when OK is false.
	Reason SaveReason `json:"reason,omitempty"`
	// Queued reports whether the entry was appended to the pending store.
	Queued bool `json:"queued"`
}
