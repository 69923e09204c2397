package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-enabled turn the autosave engine on
//	-collection remote collection name
//	-document-prefix fixed document id prefix
//	-company-code company code component of document ids
//	-debounce debounce delay (e.g., "700ms")
//	-backend remote store backend ("http" or "surreal")
//	-remote-address REST document store base URL
//	-surreal-address SurrealDB RPC URL
//	-kv-driver local kv driver ("bolt", "sqlite", "memory")
//	-kv-path local kv database path
//	-pending-limit pending queue bound
//	-flush-interval auto-flush interval (e.g., "1m")
//	-request-timeout remote request timeout (e.g., "10s")
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var enabled bool
	var collection string
	var documentPrefix string
	var companyCode string
	var debounceDelay time.Duration
	var backend string
	var httpAddress string
	var surrealAddress string
	var kvDriver string
	var kvPath string
	var pendingLimit int
	var flushInterval time.Duration
	var requestTimeout time.Duration
	var jsonConfigPath string

	flag.BoolVar(&enabled, "enabled", false, "Turn the autosave engine on")
	flag.StringVar(&collection, "collection", "", "Remote collection name")
	flag.StringVar(&documentPrefix, "document-prefix", "", "Document id prefix")
	flag.StringVar(&companyCode, "company-code", "", "Company code")
	flag.DurationVar(&debounceDelay, "debounce", 0, "Debounce delay (e.g., 700ms)")
	flag.StringVar(&backend, "backend", "", "Remote store backend (http or surreal)")
	flag.StringVar(&httpAddress, "remote-address", "", "REST document store base URL")
	flag.StringVar(&surrealAddress, "surreal-address", "", "SurrealDB RPC URL")
	flag.StringVar(&kvDriver, "kv-driver", "", "Local kv driver (bolt, sqlite, memory)")
	flag.StringVar(&kvPath, "kv-path", "", "Local kv database path")
	flag.IntVar(&pendingLimit, "pending-limit", 0, "Pending queue bound")
	flag.DurationVar(&flushInterval, "flush-interval", 0, "Auto-flush interval (e.g., 1m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 10s)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Sync: Sync{
			Enabled:        enabled,
			Collection:     collection,
			DocumentPrefix: documentPrefix,
			CompanyCode:    companyCode,
			DebounceDelay:  debounceDelay,
		},
		Remote: Remote{
			Backend:        backend,
			HTTPAddress:    httpAddress,
			SurrealAddress: surrealAddress,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			KV: KVConfig{
				Driver: kvDriver,
				Path:   kvPath,
			},
			PendingLimit: pendingLimit,
		},
		Workers: Workers{
			AutoFlushInterval: flushInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}
