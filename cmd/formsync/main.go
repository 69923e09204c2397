package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rmura/formsync/internal/adapter"
	"github.com/rmura/formsync/internal/client"
	"github.com/rmura/formsync/internal/config"
	"github.com/rmura/formsync/internal/identity"
	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/internal/service"
	"github.com/rmura/formsync/internal/store"
	"github.com/rmura/formsync/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("formsync")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	kv, err := openKV(cfg.Storage.KV)
	if err != nil {
		log.Fatal().Err(err).Msg("open local storage")
	}
	defer kv.Close()

	pending := store.NewPendingStore(kv, cfg.Storage.PendingLimit, log)
	device := store.NewDeviceIdentity(kv, log)
	resolver := identity.NewResolver(cfg.Sync.DocumentPrefix, cfg.Sync.CompanyCode, cfg.Sync.Collection)

	// A missing remote configuration leaves the engine inert instead of
	// failing startup: not-ready is a normal state for this subsystem.
	docStore, err := openDocumentStore(cfg, log)
	if err != nil {
		if !errors.Is(err, adapter.ErrConfigMissing) {
			log.Fatal().Err(err).Msg("create remote store")
		}
		log.Warn().Err(err).Msg("remote store unconfigured, sync disabled")
	}

	payloadPath := getenv("FORMSYNC_PAYLOAD_FILE", "payload.json")
	engine := service.NewEngine(service.Options{
		Enabled:       cfg.Sync.Enabled,
		DebounceDelay: cfg.Sync.DebounceDelay,
		Source:        client.NewFilePayloadSource(payloadPath, log),
		Store:         docStore,
		Pending:       pending,
		Device:        device,
		Resolver:      resolver,
		Log:           log,
	})

	if info, ok := engine.PreviewDocInfo(); ok {
		log.Info().
			Str("documentId", info.DocumentID).
			Str("monthKey", info.MonthKey).
			Str("signature", info.Signature).
			Msg("document identity preview")
	}

	job := workers.NewFlushJob(engine, cfg.Workers.AutoFlushInterval)
	app := client.NewApp(engine, job, log)

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func openKV(cfg config.KVConfig) (store.KV, error) {
	switch cfg.Driver {
	case config.KVDriverBolt:
		path := cfg.Path
		if path == "" {
			path = "formsync.db"
		}
		return store.NewBoltKV(path)
	case config.KVDriverSQLite:
		return store.NewSQLiteKV(cfg.Path)
	case config.KVDriverMemory:
		return store.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownDriver, cfg.Driver)
	}
}

func openDocumentStore(cfg *config.StructuredConfig, log *logger.Logger) (adapter.DocumentStore, error) {
	switch cfg.Remote.Backend {
	case config.RemoteBackendSurreal:
		return adapter.NewSurrealDocumentStore(cfg.Remote, cfg.Sync.Collection, log)
	default:
		return adapter.NewHTTPDocumentStore(cfg.Remote, cfg.Sync.Collection, log)
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
