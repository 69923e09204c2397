package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when merged
// configuration values can never work.
var (
	// ErrInvalidRemoteConfigs indicates an unknown remote backend name.
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidStorageConfigs indicates an unknown kv driver or a negative
	// pending queue bound.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
)
