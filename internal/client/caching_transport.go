// Package client builds the outbound HTTP clients used to reach the auth server.
package client

import (
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// DefaultTimeout bounds requests made by clients from this package.
const DefaultTimeout = 10 * time.Second

// NewCachingHTTPClient creates an HTTP client that honours the Cache-Control
// headers of the responses it receives (e.g. the JWKS endpoint). Responses are
// cached on disk under cacheDir so keys survive restarts, or in memory when
// cacheDir is empty. A zero timeout uses DefaultTimeout.
func NewCachingHTTPClient(cacheDir string, timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var cache httpcache.Cache = httpcache.NewMemoryCache()
	if cacheDir != "" {
		cache = diskcache.New(cacheDir)
	}

	return &http.Client{
		Transport: httpcache.NewTransport(cache),
		Timeout:   timeout,
	}
}

// FromCache reports whether resp was served from the cache.
func FromCache(resp *http.Response) bool {
	return resp.Header.Get(httpcache.XFromCache) != ""
}
