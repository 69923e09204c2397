package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Sync struct {
		Enabled        bool     `json:"enabled"`
		Collection     string   `json:"collection"`
		DocumentPrefix string   `json:"document_prefix"`
		CompanyCode    string   `json:"company_code"`
		DebounceDelay  Duration `json:"debounce_delay"`
	} `json:"sync,omitempty"`

	Remote struct {
		Backend          string   `json:"backend"`
		HTTPAddress      string   `json:"http_address"`
		SurrealAddress   string   `json:"surreal_address"`
		Namespace        string   `json:"namespace"`
		Database         string   `json:"database"`
		Username         string   `json:"username"`
		Password         string   `json:"password"`
		UseAnonymousAuth bool     `json:"use_anonymous_auth"`
		RequestTimeout   Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Storage struct {
		KV struct {
			Driver string `json:"driver"`
			Path   string `json:"path"`
		} `json:"kv,omitempty"`
		PendingLimit int `json:"pending_limit"`
	} `json:"storage,omitempty"`

	Workers struct {
		AutoFlushInterval Duration `json:"auto_flush_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Sync: Sync{
			Enabled:        jsonCfg.Sync.Enabled,
			Collection:     jsonCfg.Sync.Collection,
			DocumentPrefix: jsonCfg.Sync.DocumentPrefix,
			CompanyCode:    jsonCfg.Sync.CompanyCode,
			DebounceDelay:  time.Duration(jsonCfg.Sync.DebounceDelay),
		},
		Remote: Remote{
			Backend:          jsonCfg.Remote.Backend,
			HTTPAddress:      jsonCfg.Remote.HTTPAddress,
			SurrealAddress:   jsonCfg.Remote.SurrealAddress,
			Namespace:        jsonCfg.Remote.Namespace,
			Database:         jsonCfg.Remote.Database,
			Username:         jsonCfg.Remote.Username,
			Password:         jsonCfg.Remote.Password,
			UseAnonymousAuth: jsonCfg.Remote.UseAnonymousAuth,
			RequestTimeout:   time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Storage: Storage{
			KV: KVConfig{
				Driver: jsonCfg.Storage.KV.Driver,
				Path:   jsonCfg.Storage.KV.Path,
			},
			PendingLimit: jsonCfg.Storage.PendingLimit,
		},
		Workers: Workers{
			AutoFlushInterval: time.Duration(jsonCfg.Workers.AutoFlushInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
