package config

// validate checks the merged [StructuredConfig] for structural sanity.
//
// Missing connection parameters are deliberately NOT validation errors: the
// engine treats an unconfigured remote as a normal "not ready" state and
// stays inert, per the error-handling design. Validation only rejects values
// that can never work (unknown backend or driver names, negative bounds).
func (cfg *StructuredConfig) validate() error {
	switch cfg.Remote.Backend {
	case RemoteBackendHTTP, RemoteBackendSurreal:
	default:
		return ErrInvalidRemoteConfigs
	}

	switch cfg.Storage.KV.Driver {
	case KVDriverBolt, KVDriverSQLite, KVDriverMemory:
	default:
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.PendingLimit < 0 {
		return ErrInvalidStorageConfigs
	}

	return nil
}
