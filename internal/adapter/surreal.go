package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/surrealdb/surrealdb.go"

	"github.com/rmura/formsync/internal/config"
	"github.com/rmura/formsync/internal/logger"
)

// mergeUpsertQuery creates the record if absent and merges fields if present;
// updatedAt is assigned server-side so clocks on devices never leak into the
// remote record's write timestamp.
const mergeUpsertQuery = `UPDATE type::thing($tb, $id) MERGE $data SET updatedAt = time::now()`

type surrealDocumentStore struct {
	cfg        config.Remote
	collection string
	boot       bootstrap
	log        *logger.Logger

	mu     sync.RWMutex
	db     *surrealdb.DB
	userID string
}

// NewSurrealDocumentStore constructs the SurrealDB implementation of
// [DocumentStore]. The WebSocket connection is not opened here; EnsureReady
// establishes it lazily so an offline start is a normal state instead of a
// startup failure.
//
// Returns [ErrConfigMissing] (wrapped) if the RPC address, namespace or
// database name is absent.
func NewSurrealDocumentStore(remoteCfg config.Remote, collection string, log *logger.Logger) (DocumentStore, error) {
	var missing []string
	if strings.TrimSpace(remoteCfg.SurrealAddress) == "" {
		missing = append(missing, "REMOTE_SURREAL_ADDRESS")
	}
	if remoteCfg.Namespace == "" {
		missing = append(missing, "REMOTE_NAMESPACE")
	}
	if remoteCfg.Database == "" {
		missing = append(missing, "REMOTE_DATABASE")
	}
	if collection == "" {
		missing = append(missing, "SYNC_COLLECTION")
	}
	if len(missing) > 0 {
		log.Error().Strs("missing", missing).Msg("remote store not configured")
		return nil, fmt.Errorf("%w: %s", ErrConfigMissing, strings.Join(missing, ", "))
	}

	return &surrealDocumentStore{cfg: remoteCfg, collection: collection, log: log}, nil
}

// EnsureReady implements [DocumentStore]. The bootstrap dials the WebSocket,
// optionally signs in (failure logged and tolerated) and selects the
// namespace/database. A failed dial leaves the store retriable on the next
// call.
func (s *surrealDocumentStore) EnsureReady(ctx context.Context) error {
	return s.boot.ensure(ctx, func(_ context.Context) error {
		db, err := surrealdb.New(s.cfg.SurrealAddress)
		if err != nil {
			return fmt.Errorf("%w: dial surrealdb: %v", ErrOffline, err)
		}

		if s.cfg.Username != "" {
			_, err = db.Signin(map[string]any{
				"user": s.cfg.Username,
				"pass": s.cfg.Password,
			})
			if err != nil {
				s.log.Warn().Err(err).Msg("surrealdb signin failed, writing unauthenticated")
			} else {
				s.mu.Lock()
				s.userID = s.cfg.Username
				s.mu.Unlock()
			}
		}

		if _, err = db.Use(s.cfg.Namespace, s.cfg.Database); err != nil {
			db.Close()
			return fmt.Errorf("use %s/%s: %w", s.cfg.Namespace, s.cfg.Database, err)
		}

		s.mu.Lock()
		s.db = db
		s.mu.Unlock()

		return nil
	})
}

// Upsert implements [DocumentStore] via a MERGE query keyed by document id.
func (s *surrealDocumentStore) Upsert(ctx context.Context, documentID string, fields map[string]any) error {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()

	if db == nil {
		return fmt.Errorf("%w: session not established", ErrOffline)
	}

	_, err := db.Query(mergeUpsertQuery, map[string]any{
		"tb":   s.collection,
		"id":   documentID,
		"data": fields,
	})
	if err != nil {
		return fmt.Errorf("merge %s: %w", documentID, err)
	}

	return nil
}

// UserID implements [DocumentStore].
func (s *surrealDocumentStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userID
}
