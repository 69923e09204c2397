package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmura/formsync/internal/config"
	"github.com/rmura/formsync/internal/logger"
)

// Unsigned token with sub = "anon-42". The client never verifies tokens, it
// only peeks at the claims.
const testToken = "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
	"eyJzdWIiOiJhbm9uLTQyIn0."

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

type fakeRemote struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
}

func (f *fakeRemote) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
		}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)

		f.mu.Lock()
		f.requests = append(f.requests, rec)
		status := f.status
		f.mu.Unlock()

		if r.URL.Path == "/v1/auth/anonymous" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"token": testToken})
			return
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func (f *fakeRemote) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func newTestStore(t *testing.T, baseURL string, anonAuth bool) DocumentStore {
	t.Helper()

	store, err := NewHTTPDocumentStore(config.Remote{
		HTTPAddress:      baseURL,
		UseAnonymousAuth: anonAuth,
		RequestTimeout:   2 * time.Second,
	}, "tireChecks", logger.Nop())
	require.NoError(t, err)
	return store
}

func TestNewHTTPDocumentStore_MissingConfig(t *testing.T) {
	_, err := NewHTTPDocumentStore(config.Remote{}, "tireChecks", logger.Nop())
	assert.ErrorIs(t, err, ErrConfigMissing)

	_, err = NewHTTPDocumentStore(config.Remote{HTTPAddress: "localhost:8080"}, "", logger.Nop())
	assert.ErrorIs(t, err, ErrConfigMissing)
}

func TestNormalizeBaseURL(t *testing.T) {
	got, err := normalizeBaseURL("localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", got)

	got, err = normalizeBaseURL("https://store.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com", got)

	_, err = normalizeBaseURL("   ")
	assert.Error(t, err)
}

func TestHTTPDocumentStore_UpsertPatchesDocument(t *testing.T) {
	remote := &fakeRemote{}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	store := newTestStore(t, srv.URL, false)
	require.NoError(t, store.EnsureReady(context.Background()))

	err := store.Upsert(context.Background(), "monthly_tire_acme_2025-03_a1b2c3d4", map[string]any{
		"monthKey": "2025-03",
	})
	require.NoError(t, err)

	reqs := remote.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].method)
	assert.Equal(t, "/v1/tireChecks/monthly_tire_acme_2025-03_a1b2c3d4", reqs[0].path)
	assert.Equal(t, "2025-03", reqs[0].body["monthKey"])
	assert.Empty(t, reqs[0].auth)
	assert.Equal(t, "", store.UserID())
}

func TestHTTPDocumentStore_AnonymousAuthSetsBearerAndUserID(t *testing.T) {
	remote := &fakeRemote{}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	store := newTestStore(t, srv.URL, true)
	require.NoError(t, store.EnsureReady(context.Background()))
	assert.Equal(t, "anon-42", store.UserID())

	require.NoError(t, store.Upsert(context.Background(), "doc", map[string]any{}))

	reqs := remote.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/v1/auth/anonymous", reqs[0].path)
	assert.Equal(t, "Bearer "+testToken, reqs[1].auth)
}

func TestHTTPDocumentStore_NetworkFailureIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listens anymore

	store := newTestStore(t, srv.URL, false)
	require.NoError(t, store.EnsureReady(context.Background()))

	err := store.Upsert(context.Background(), "doc", map[string]any{})
	assert.ErrorIs(t, err, ErrOffline)
}

func TestHTTPDocumentStore_ServerErrorIsMapped(t *testing.T) {
	remote := &fakeRemote{status: http.StatusInternalServerError}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	store := newTestStore(t, srv.URL, false)
	require.NoError(t, store.EnsureReady(context.Background()))

	err := store.Upsert(context.Background(), "doc", map[string]any{})
	assert.ErrorIs(t, err, ErrServerError)
	assert.NotErrorIs(t, err, ErrOffline)
}

func TestSubjectOf(t *testing.T) {
	assert.Equal(t, "anon-42", subjectOf(testToken))
	assert.Equal(t, "", subjectOf("garbage"))
}
