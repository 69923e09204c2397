package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/rmura/formsync/internal/config"
	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/internal/utils"
)

type httpDocumentStore struct {
	client     *utils.HTTPClient
	collection string
	anonAuth   bool
	boot       bootstrap
	log        *logger.Logger

	mu     sync.RWMutex
	token  string
	userID string
}

// NewHTTPDocumentStore constructs the REST implementation of [DocumentStore].
// It normalises and validates the base URL from remoteCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and
// request timeout.
//
// The consumed contract: PATCH /v1/{collection}/{id} merge-upserts the JSON
// body into the document and stamps a server-side "updatedAt" on every merge;
// POST /v1/auth/anonymous issues a bearer token for an anonymous identity.
//
// Returns [ErrConfigMissing] (wrapped) if remoteCfg.HTTPAddress is empty, or
// an error if it cannot be parsed as a valid URL.
func NewHTTPDocumentStore(remoteCfg config.Remote, collection string, log *logger.Logger) (DocumentStore, error) {
	if strings.TrimSpace(remoteCfg.HTTPAddress) == "" {
		log.Error().Str("missing", "REMOTE_HTTP_ADDRESS").Msg("remote store not configured")
		return nil, fmt.Errorf("%w: http address", ErrConfigMissing)
	}
	if collection == "" {
		log.Error().Str("missing", "SYNC_COLLECTION").Msg("remote store not configured")
		return nil, fmt.Errorf("%w: collection", ErrConfigMissing)
	}

	baseURL, err := normalizeBaseURL(remoteCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid remote http address: %w", err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(remoteCfg.RequestTimeout)

	return &httpDocumentStore{
		client:     client,
		collection: collection,
		anonAuth:   remoteCfg.UseAnonymousAuth,
		log:        log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// EnsureReady implements [DocumentStore]. For the HTTP backend the only
// bootstrap step is the optional anonymous sign-in; its failure is logged and
// tolerated, so readiness is reached either way and enforcement is left to
// the remote store's own access rules.
func (h *httpDocumentStore) EnsureReady(ctx context.Context) error {
	return h.boot.ensure(ctx, func(ctx context.Context) error {
		if !h.anonAuth {
			return nil
		}
		if err := h.signInAnonymously(ctx); err != nil {
			h.log.Warn().Err(err).Msg("anonymous auth failed, writing unauthenticated")
		}
		return nil
	})
}

// Upsert implements [DocumentStore]. Network-level failures map to
// [ErrOffline]; HTTP error statuses map to the typed sentinels of this
// package.
func (h *httpDocumentStore) Upsert(ctx context.Context, documentID string, fields map[string]any) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(fields).
		Patch(fmt.Sprintf("/v1/%s/%s", h.collection, documentID))
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrOffline, documentID, err)
	}

	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("upsert %s: %w", documentID, err)
	}

	return nil
}

// UserID implements [DocumentStore]. It returns the anonymous user id
// resolved during sign-in, or "" when unauthenticated.
func (h *httpDocumentStore) UserID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.userID
}

func (h *httpDocumentStore) signInAnonymously(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		Post("/v1/auth/anonymous")
	if err != nil {
		return fmt.Errorf("anonymous auth request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	var body struct {
		Token string `json:"token"`
	}
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("decode anonymous auth response: %w", err)
	}
	if body.Token == "" {
		return fmt.Errorf("anonymous auth response carries no token")
	}

	h.mu.Lock()
	h.token = body.Token
	h.userID = subjectOf(body.Token)
	h.mu.Unlock()

	return nil
}

// subjectOf peeks at the token's unverified claims for the anonymous user id.
// The token is opaque to this client otherwise; verification happens on the
// store side.
func subjectOf(token string) string {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func (h *httpDocumentStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)

	h.mu.RLock()
	token := h.token
	h.mu.RUnlock()

	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
