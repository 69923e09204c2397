package adapter

import "errors"

var (
	// ErrConfigMissing indicates required connection parameters are absent.
	// Sync stays inert; this state is never retried automatically.
	ErrConfigMissing = errors.New("remote store configuration missing")
	// ErrOffline indicates a network-level failure before any response
	// arrived from the remote store.
	ErrOffline = errors.New("remote store unreachable")

	ErrUnauthorized = errors.New("client unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServerError  = errors.New("server error")
)
