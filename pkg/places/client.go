// Package places provides a client for the Google Places API
// (legacy Maps endpoints: text search, details, photo).
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Client performs Places API operations.
type Client interface {
	TextSearch(ctx context.Context, query string) (*TextSearchResponse, error)
	Details(ctx context.Context, placeID string) (*DetailsResponse, error)
	PhotoURL(photoReference string, maxWidth int) string
}

// TextSearchResponse is the response from the text search endpoint.
type TextSearchResponse struct {
	Status  string         `json:"status"`
	Results []SearchResult `json:"results"`
}

// SearchResult is a single text search hit.
type SearchResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         Geometry `json:"geometry"`
}

// Geometry holds a place's coordinates.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DetailsResponse is the response from the place details endpoint.
type DetailsResponse struct {
	Status string  `json:"status"`
	Result Details `json:"result"`
}

// Details holds the detail fields requested for a place.
type Details struct {
	Name             string        `json:"name"`
	Rating           float64       `json:"rating"`
	FormattedAddress string        `json:"formatted_address"`
	Photos           []Photo       `json:"photos"`
	Reviews          []Review      `json:"reviews"`
	OpeningHours     *OpeningHours `json:"opening_hours"`
	PriceLevel       int           `json:"price_level"`
}

// Photo references a photo retrievable through the photo endpoint.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// Review is a user review attached to a place.
type Review struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       int64   `json:"time"`
}

// OpeningHours lists human-readable weekly hours.
type OpeningHours struct {
	WeekdayText []string `json:"weekday_text"`
}

// detailsFields is the field list requested from the details endpoint.
const detailsFields = "name,rating,formatted_address,photo,review,opening_hours,price_level"

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TextSearch looks up places matching the query. A ZERO_RESULTS status
// returns an empty result set, not an error.
func (c *httpClient) TextSearch(ctx context.Context, query string) (*TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	var result TextSearchResponse
	if err := c.get(ctx, "/place/textsearch/json", params, &result); err != nil {
		return nil, eris.Wrap(err, "places: text search")
	}

	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("places: text search status %s", result.Status)
	}
	return &result, nil
}

// Details fetches the detail fields for a place found via TextSearch.
func (c *httpClient) Details(ctx context.Context, placeID string) (*DetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	params.Set("key", c.apiKey)

	var result DetailsResponse
	if err := c.get(ctx, "/place/details/json", params, &result); err != nil {
		return nil, eris.Wrapf(err, "places: details %s", placeID)
	}

	if result.Status != "OK" {
		return nil, eris.Errorf("places: details status %s", result.Status)
	}
	return &result, nil
}

// PhotoURL builds the retrieval URL for a photo reference. The key is
// embedded because the photo endpoint authenticates by query parameter.
func (c *httpClient) PhotoURL(photoReference string, maxWidth int) string {
	params := url.Values{}
	params.Set("maxwidth", fmt.Sprintf("%d", maxWidth))
	params.Set("photoreference", photoReference)
	params.Set("key", c.apiKey)
	return c.baseURL + "/place/photo?" + params.Encode()
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
