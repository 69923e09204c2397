package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &StructuredConfig{}
	cfg.applyDefaults()

	assert.Equal(t, DefaultDebounceDelay, cfg.Sync.DebounceDelay)
	assert.Equal(t, RemoteBackendHTTP, cfg.Remote.Backend)
	assert.Equal(t, DefaultRequestTimeout, cfg.Remote.RequestTimeout)
	assert.Equal(t, KVDriverBolt, cfg.Storage.KV.Driver)
	assert.Equal(t, DefaultAutoFlushInterval, cfg.Workers.AutoFlushInterval)
}

func TestApplyDefaults_FlushIntervalFloor(t *testing.T) {
	cfg := &StructuredConfig{}
	cfg.Workers.AutoFlushInterval = time.Second
	cfg.applyDefaults()

	assert.Equal(t, MinAutoFlushInterval, cfg.Workers.AutoFlushInterval)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &StructuredConfig{}
	cfg.Sync.DebounceDelay = 300 * time.Millisecond
	cfg.Remote.Backend = RemoteBackendSurreal
	cfg.Workers.AutoFlushInterval = 5 * time.Minute
	cfg.applyDefaults()

	assert.Equal(t, 300*time.Millisecond, cfg.Sync.DebounceDelay)
	assert.Equal(t, RemoteBackendSurreal, cfg.Remote.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Workers.AutoFlushInterval)
}

func TestValidate(t *testing.T) {
	valid := &StructuredConfig{}
	valid.applyDefaults()
	assert.NoError(t, valid.validate())

	badBackend := &StructuredConfig{}
	badBackend.applyDefaults()
	badBackend.Remote.Backend = "firestore"
	assert.ErrorIs(t, badBackend.validate(), ErrInvalidRemoteConfigs)

	badDriver := &StructuredConfig{}
	badDriver.applyDefaults()
	badDriver.Storage.KV.Driver = "redis"
	assert.ErrorIs(t, badDriver.validate(), ErrInvalidStorageConfigs)

	negativeLimit := &StructuredConfig{}
	negativeLimit.applyDefaults()
	negativeLimit.Storage.PendingLimit = -1
	assert.ErrorIs(t, negativeLimit.validate(), ErrInvalidStorageConfigs)

	// Missing connection params are a "not ready" state, never a config error.
	unconfigured := &StructuredConfig{}
	unconfigured.applyDefaults()
	assert.NoError(t, unconfigured.validate())
}

func TestParseJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"sync": {
			"enabled": true,
			"collection": "tireChecks",
			"document_prefix": "monthly_tire",
			"company_code": "acme",
			"debounce_delay": "700ms"
		},
		"remote": {
			"backend": "surreal",
			"surreal_address": "ws://localhost:8000/rpc",
			"namespace": "fleet",
			"database": "forms",
			"request_timeout": "10s"
		},
		"storage": {
			"kv": {"driver": "bolt", "path": "/var/lib/formsync.db"},
			"pending_limit": 50
		},
		"workers": {"auto_flush_interval": "1m"}
	}`), 0644))

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, "tireChecks", cfg.Sync.Collection)
	assert.Equal(t, "monthly_tire", cfg.Sync.DocumentPrefix)
	assert.Equal(t, 700*time.Millisecond, cfg.Sync.DebounceDelay)
	assert.Equal(t, RemoteBackendSurreal, cfg.Remote.Backend)
	assert.Equal(t, "ws://localhost:8000/rpc", cfg.Remote.SurrealAddress)
	assert.Equal(t, 10*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, KVDriverBolt, cfg.Storage.KV.Driver)
	assert.Equal(t, 50, cfg.Storage.PendingLimit)
	assert.Equal(t, time.Minute, cfg.Workers.AutoFlushInterval)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"1h30m"`), &d))
	assert.Equal(t, 90*time.Minute, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, time.Duration(d))

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"1h30m0s"`, string(b))
}

func TestConfigBuilder_FirstNonZeroWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{Sync: Sync{Collection: "envChecks"}},
		&StructuredConfig{Sync: Sync{Collection: "jsonChecks", CompanyCode: "acme"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, "envChecks", cfg.Sync.Collection)
	assert.Equal(t, "acme", cfg.Sync.CompanyCode)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("SYNC_ENABLED", "true")
	t.Setenv("SYNC_COLLECTION", "tireChecks")
	t.Setenv("SYNC_DEBOUNCE_DELAY", "500ms")
	t.Setenv("REMOTE_BACKEND", "http")
	t.Setenv("REMOTE_HTTP_ADDRESS", "http://localhost:8080")
	t.Setenv("STORAGE_KV_DRIVER", "memory")
	t.Setenv("STORAGE_PENDING_LIMIT", "25")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, "tireChecks", cfg.Sync.Collection)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.DebounceDelay)
	assert.Equal(t, "http://localhost:8080", cfg.Remote.HTTPAddress)
	assert.Equal(t, KVDriverMemory, cfg.Storage.KV.Driver)
	assert.Equal(t, 25, cfg.Storage.PendingLimit)
}
