package store

import "errors"

var (
	// ErrUnknownDriver indicates an unrecognized KV driver name in the
	// storage configuration.
	ErrUnknownDriver = errors.New("unknown kv driver")
)
