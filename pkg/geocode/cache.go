package geocode

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// cacheKey returns SHA-256 hex of the normalized query for cache lookup.
func cacheKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// checkCache looks up a cached geocode result. Cached non-matches
// (Matched=false) are returned too so the caller can skip the network.
func (g *geocoder) checkCache(key string) (*Result, bool) {
	cached, found := g.cache.Get(key)
	if !found {
		return nil, false
	}
	result, ok := cached.(Result)
	if !ok {
		return nil, false
	}

	keyPrefix := key
	if len(keyPrefix) > 12 {
		keyPrefix = keyPrefix[:12]
	}
	zap.L().Debug("geocode cache hit", zap.String("key", keyPrefix), zap.Bool("matched", result.Matched))
	return &result, true
}

// storeCache inserts a geocode result (match or non-match) into the cache.
func (g *geocoder) storeCache(key string, result *Result) {
	g.cache.Set(key, *result, cache.DefaultExpiration)
}
