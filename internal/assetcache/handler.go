package assetcache

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler returns the same-origin GET interceptor. Routing rules, in order:
// bypass prefixes are proxied untouched, shell assets are cache-first,
// network-first prefixes fetch fresh with cache fallback, navigations are
// network-first with the full shell as offline fallback, and everything else
// is proxied without caching.
func (c *Cache) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/*", c.serve)
	return r
}

func (c *Cache) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case c.isBypass(path):
		c.passThrough(w, r)
	case c.isShellAsset(path):
		c.serveCacheFirst(w, r)
	case c.isNetworkFirst(path):
		c.serveNetworkFirst(w, r, path)
	case isNavigation(r):
		c.serveNetworkFirst(w, r, c.cfg.NavigationFallback)
	default:
		c.passThrough(w, r)
	}
}

func (c *Cache) serveCacheFirst(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if asset, ok := c.lookup(path); ok {
		writeAsset(w, asset)
		return
	}

	asset, err := c.fetch(r.Context(), path)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("shell asset unavailable")
		http.Error(w, "offline and not cached", http.StatusServiceUnavailable)
		return
	}

	c.put(path, asset)
	writeAsset(w, asset)
}

// serveNetworkFirst fetches path fresh and refreshes the cache; when the
// network is unavailable the cached copy (fallbackPath for navigations) is
// served instead.
func (c *Cache) serveNetworkFirst(w http.ResponseWriter, r *http.Request, fallbackPath string) {
	path := r.URL.Path
	asset, err := c.fetch(r.Context(), path)
	if err == nil {
		c.put(path, asset)
		writeAsset(w, asset)
		return
	}

	if cached, ok := c.lookup(path); ok {
		writeAsset(w, cached)
		return
	}
	if fallbackPath != path {
		if cached, ok := c.lookup(fallbackPath); ok {
			writeAsset(w, cached)
			return
		}
	}

	c.log.Warn().Err(err).Str("path", path).Msg("network-first asset unavailable")
	http.Error(w, "offline and not cached", http.StatusServiceUnavailable)
}

func (c *Cache) passThrough(w http.ResponseWriter, r *http.Request) {
	asset, err := c.fetch(r.Context(), r.URL.Path)
	if err != nil {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	writeAsset(w, asset)
}

func writeAsset(w http.ResponseWriter, asset cachedAsset) {
	if asset.contentType != "" {
		w.Header().Set("Content-Type", asset.contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.body)
}

func isNavigation(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
