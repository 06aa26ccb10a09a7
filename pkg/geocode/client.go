// Package geocode resolves place names to coordinates and coordinates
// to country/city via the Nominatim API.
package geocode

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "landmark-cli/1.0"
)

// Client geocodes free-form place queries.
type Client interface {
	// Lookup resolves a place name to coordinates.
	Lookup(ctx context.Context, query string) (*Result, error)

	// Reverse resolves coordinates to a country and city.
	Reverse(ctx context.Context, lat, lng float64) (*ReverseResult, error)
}

// Result holds the geocoding output for a query. Type is Nominatim's
// addresstype when present ("country", "city", "town", ...), useful for
// checking what kind of place a free-form query resolved to.
type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
	Type        string
	Matched     bool
}

// ReverseResult holds the result of a reverse geocode operation.
type ReverseResult struct {
	Country     string `json:"country"`
	City        string `json:"city"`
	DisplayName string `json:"display_name"`
	Matched     bool   `json:"matched"`
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(g *geocoder) {
		g.baseURL = url
	}
}

// WithUserAgent sets the User-Agent header. Nominatim rejects requests
// without an identifying agent.
func WithUserAgent(ua string) Option {
	return func(g *geocoder) {
		g.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithCacheTTL sets how long resolved queries are kept in memory.
func WithCacheTTL(ttl time.Duration) Option {
	return func(g *geocoder) {
		g.cache = cache.New(ttl, 2*ttl)
	}
}

type geocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
}

// NewClient creates a new geocoding Client with the given options. The
// default limiter honors Nominatim's one request per second policy.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		cache:      cache.New(60*time.Minute, 2*time.Hour),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Lookup resolves a place name, consulting the cache first.
func (g *geocoder) Lookup(ctx context.Context, query string) (*Result, error) {
	key := cacheKey(query)
	if cached, ok := g.checkCache(key); ok {
		return cached, nil
	}

	result, err := g.lookupNominatim(ctx, query)
	if err != nil {
		return nil, err
	}

	// Non-matches are cached too so repeat misses stay local.
	g.storeCache(key, result)
	return result, nil
}

// Reverse resolves coordinates to country and city. No match is not an
// error, just unmatched.
func (g *geocoder) Reverse(ctx context.Context, lat, lng float64) (*ReverseResult, error) {
	return g.reverseNominatim(ctx, lat, lng)
}
