package config

import (
	"time"
)

// Defaults and floors applied after all sources are merged.
const (
	// DefaultDebounceDelay coalesces rapid save triggers into one write.
	DefaultDebounceDelay = 700 * time.Millisecond
	// MinAutoFlushInterval is the enforced floor for the recurring flush
	// timer, so the remote store is never hammered.
	MinAutoFlushInterval = 15 * time.Second
	// DefaultAutoFlushInterval is used when no interval is configured.
	DefaultAutoFlushInterval = time.Minute
	// DefaultRequestTimeout bounds a single outbound remote request.
	DefaultRequestTimeout = 10 * time.Second
)

// Recognized backend and driver names.
const (
	RemoteBackendHTTP    = "http"
	RemoteBackendSurreal = "surreal"

	KVDriverBolt   = "bolt"
	KVDriverSQLite = "sqlite"
	KVDriverMemory = "memory"
)

// StructuredConfig is the top-level configuration container for formsync.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Sync holds the autosave engine settings: identity components and
	// debounce/flush timing.
	Sync Sync `envPrefix:"SYNC_"`

	// Remote holds the remote document-store connection settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds local durable storage settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds background job settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Sync holds engine-level settings.
type Sync struct {
	// Enabled turns the autosave engine on. When false every save request
	// reports "disabled" and nothing is queued.
	// Env: SYNC_ENABLED
	Enabled bool `env:"ENABLED"`

	// Collection is the remote namespace documents are written into.
	// Env: SYNC_COLLECTION
	Collection string `env:"COLLECTION"`

	// DocumentPrefix is the fixed first component of every document id
	// (e.g. "monthly_tire").
	// Env: SYNC_DOCUMENT_PREFIX
	DocumentPrefix string `env:"DOCUMENT_PREFIX"`

	// CompanyCode is the second component of every document id.
	// Env: SYNC_COMPANY_CODE
	CompanyCode string `env:"COMPANY_CODE"`

	// DebounceDelay is how long the engine waits after the last save
	// trigger before attempting the write (e.g. "700ms").
	// Env: SYNC_DEBOUNCE_DELAY
	DebounceDelay time.Duration `env:"DEBOUNCE_DELAY"`
}

// Remote holds the remote document-store settings.
type Remote struct {
	// Backend selects the store implementation: "http" or "surreal".
	// Env: REMOTE_BACKEND
	Backend string `env:"BACKEND"`

	// HTTPAddress is the base URL of the REST document store.
	// Env: REMOTE_HTTP_ADDRESS
	HTTPAddress string `env:"HTTP_ADDRESS"`

	// SurrealAddress is the WebSocket URL of the SurrealDB RPC endpoint
	// (e.g. "ws://localhost:8000/rpc").
	// Env: REMOTE_SURREAL_ADDRESS
	SurrealAddress string `env:"SURREAL_ADDRESS"`

	// Namespace and Database select the SurrealDB namespace/database.
	// Env: REMOTE_NAMESPACE, REMOTE_DATABASE
	Namespace string `env:"NAMESPACE"`
	Database  string `env:"DATABASE"`

	// Username and Password are optional sign-in credentials for the
	// SurrealDB backend. Sign-in failure is tolerated.
	// Env: REMOTE_USERNAME, REMOTE_PASSWORD
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`

	// UseAnonymousAuth makes the HTTP backend request an anonymous identity
	// before writing. Auth failure is tolerated; writes proceed unsigned.
	// Env: REMOTE_USE_ANONYMOUS_AUTH
	UseAnonymousAuth bool `env:"USE_ANONYMOUS_AUTH"`

	// RequestTimeout is the maximum duration of a single outbound request
	// (e.g. "10s").
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds local durable storage settings.
type Storage struct {
	// KV holds the key-value backend settings.
	KV KVConfig `envPrefix:"KV_"`

	// PendingLimit bounds the pending queue (sliding window of the most
	// recent N entries).
	// Env: STORAGE_PENDING_LIMIT
	PendingLimit int `env:"PENDING_LIMIT"`
}

// KVConfig selects and locates the local key-value backend.
type KVConfig struct {
	// Driver is "bolt", "sqlite" or "memory".
	// Env: STORAGE_KV_DRIVER
	Driver string `env:"DRIVER"`

	// Path is the on-disk location of the KV database.
	// Env: STORAGE_KV_PATH
	Path string `env:"PATH"`
}

// Workers holds background job settings.
type Workers struct {
	// AutoFlushInterval is how often the pending queue is flushed in the
	// background. Values below [MinAutoFlushInterval] are raised to it.
	// Env: WORKERS_AUTO_FLUSH_INTERVAL
	AutoFlushInterval time.Duration `env:"AUTO_FLUSH_INTERVAL"`
}

// GetConfig loads, merges, and validates the configuration from all available
// sources in the following priority order (first non-zero value wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Defaults and floors are applied after the merge. Returns a fully populated
// *StructuredConfig or an error if any source fails to load or the final
// config fails validation.
func GetConfig() (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, cfg.validate()
}

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Sync.DebounceDelay <= 0 {
		cfg.Sync.DebounceDelay = DefaultDebounceDelay
	}
	if cfg.Remote.Backend == "" {
		cfg.Remote.Backend = RemoteBackendHTTP
	}
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Storage.KV.Driver == "" {
		cfg.Storage.KV.Driver = KVDriverBolt
	}
	if cfg.Workers.AutoFlushInterval <= 0 {
		cfg.Workers.AutoFlushInterval = DefaultAutoFlushInterval
	}
	if cfg.Workers.AutoFlushInterval < MinAutoFlushInterval {
		cfg.Workers.AutoFlushInterval = MinAutoFlushInterval
	}
}
