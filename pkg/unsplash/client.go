// Package unsplash provides a client for the Unsplash image search API.
package unsplash

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

const defaultBaseURL = "https://api.unsplash.com"

// Client performs Unsplash API operations.
type Client interface {
	SearchPhotos(ctx context.Context, query string, perPage int) (*SearchResponse, error)
	Download(ctx context.Context, photoURL string, w io.Writer) (int64, error)
}

// SearchResponse is the response from the photo search endpoint.
type SearchResponse struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Results    []Photo `json:"results"`
}

// Photo represents a single search result.
type Photo struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	URLs        PhotoURLs `json:"urls"`
}

// PhotoURLs holds the rendition URLs for a photo.
type PhotoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
}

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
	accessKey string
	baseURL   string
	http      *http.Client
}

// NewClient creates an Unsplash API client. The access key is sent as
// the client_id query parameter on every request.
func NewClient(accessKey string, opts ...Option) Client {
	c := &httpClient{
		accessKey: accessKey,
		baseURL:   defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchPhotos(ctx context.Context, query string, perPage int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", perPage))
	params.Set("client_id", c.accessKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "unsplash: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "unsplash: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "unsplash: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("unsplash: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "unsplash: unmarshal response")
	}

	return &result, nil
}

// Download streams the photo at photoURL into w and returns the number
// of bytes written. The URL comes from a prior search result and points
// at the image CDN, so no credentials are attached.
func (c *httpClient) Download(ctx context.Context, photoURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return 0, eris.Wrap(err, "unsplash: create download request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "unsplash: download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("unsplash: download status %d for %s", resp.StatusCode, photoURL)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, eris.Wrap(err, "unsplash: stream photo")
	}
	return n, nil
}
