// Package assetcache models the offline collaborator of the sync core: a
// local proxy that keeps the application shell usable without network. Shell
// assets are served cache-first, identity-sensitive endpoints network-first
// with cache fallback, and navigations network-first with a full-shell
// fallback when offline.
//
// Cache generations are versioned; activating a new version purges the old
// ones. The only contract with the sync core is that remote-store traffic is
// never cached: bypass prefixes are proxied untouched.
//
// The package ships as a library for hosts that serve the application shell
// locally; the formsync binary does not mount it. Mount [Cache.Handler] on an
// http.Server to serve through it.
package assetcache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/internal/utils"
)

// Config describes one cache generation.
type Config struct {
	// Version names the cache generation (e.g. "shell-v7").
	Version string
	// Upstream is the origin base URL assets are fetched from.
	Upstream string
	// ShellAssets are exact request paths served cache-first.
	ShellAssets []string
	// NetworkFirst are path prefixes always fetched fresh when possible
	// (timestamp/config sources), falling back to cache when offline.
	NetworkFirst []string
	// BypassPrefixes are path prefixes proxied without caching
	// (remote-store traffic).
	BypassPrefixes []string
	// NavigationFallback is the shell path served when a navigation request
	// cannot reach the network. Defaults to "/".
	NavigationFallback string
}

type cachedAsset struct {
	body        []byte
	contentType string
}

// Cache holds the versioned asset generations and the upstream client.
type Cache struct {
	cfg    Config
	client *utils.HTTPClient
	log    *logger.Logger

	mu          sync.RWMutex
	generations map[string]map[string]cachedAsset
}

// New validates cfg and builds an empty Cache; call Activate to populate the
// current generation.
func New(cfg Config, log *logger.Logger) (*Cache, error) {
	if cfg.Version == "" {
		return nil, fmt.Errorf("asset cache version is required")
	}

	u, err := url.Parse(cfg.Upstream)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", cfg.Upstream)
	}
	if cfg.NavigationFallback == "" {
		cfg.NavigationFallback = "/"
	}

	client := utils.NewHTTPClient()
	client.SetBaseURL(strings.TrimRight(u.String(), "/"))

	return &Cache{
		cfg:         cfg,
		client:      client,
		log:         log,
		generations: make(map[string]map[string]cachedAsset),
	}, nil
}

// Activate prefetches every shell asset into the configured generation and
// purges all other generations. A failed prefetch of a single asset is
// logged and skipped; it will be cached on first successful request instead.
func (c *Cache) Activate(ctx context.Context) error {
	gen := make(map[string]cachedAsset, len(c.cfg.ShellAssets))
	for _, path := range c.cfg.ShellAssets {
		asset, err := c.fetch(ctx, path)
		if err != nil {
			c.log.Warn().Err(err).Str("path", path).Msg("shell asset prefetch failed")
			continue
		}
		gen[path] = asset
	}

	c.mu.Lock()
	for version := range c.generations {
		if version != c.cfg.Version {
			delete(c.generations, version)
		}
	}
	c.generations[c.cfg.Version] = gen
	c.mu.Unlock()

	c.log.Info().
		Str("version", c.cfg.Version).
		Int("assets", len(gen)).
		Msg("asset cache generation activated")

	return nil
}

func (c *Cache) fetch(ctx context.Context, path string) (cachedAsset, error) {
	resp, err := c.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return cachedAsset{}, fmt.Errorf("fetch %s: %w", path, err)
	}
	if resp.IsError() {
		return cachedAsset{}, fmt.Errorf("fetch %s: http %d", path, resp.StatusCode())
	}

	return cachedAsset{
		body:        resp.Body(),
		contentType: resp.Header().Get("Content-Type"),
	}, nil
}

func (c *Cache) lookup(path string) (cachedAsset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	gen, ok := c.generations[c.cfg.Version]
	if !ok {
		return cachedAsset{}, false
	}
	asset, ok := gen[path]
	return asset, ok
}

func (c *Cache) put(path string, asset cachedAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen, ok := c.generations[c.cfg.Version]
	if !ok {
		gen = make(map[string]cachedAsset)
		c.generations[c.cfg.Version] = gen
	}
	gen[path] = asset
}

func (c *Cache) isShellAsset(path string) bool {
	for _, p := range c.cfg.ShellAssets {
		if p == path {
			return true
		}
	}
	return false
}

func (c *Cache) isNetworkFirst(path string) bool {
	return hasAnyPrefix(path, c.cfg.NetworkFirst)
}

func (c *Cache) isBypass(path string) bool {
	return hasAnyPrefix(path, c.cfg.BypassPrefixes)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
