// Package wikipedia provides a client for the MediaWiki action API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://en.wikipedia.org/w/api.php"

// Client performs Wikipedia lookups.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	GetPage(ctx context.Context, title string) (*Page, error)
	GetImages(ctx context.Context, title string, limit int) ([]string, error)
}

// SearchResult is a single full-text search hit.
type SearchResult struct {
	Title   string `json:"title"`
	PageID  int    `json:"pageid"`
	Snippet string `json:"snippet"`
}

// Page holds the intro extract and metadata for an article.
// Disambiguation is set when the title resolves to a disambiguation
// page rather than an article.
type Page struct {
	Title          string
	Extract        string
	URL            string
	Disambiguation bool
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
	baseURL string
	http    *http.Client
}

// NewClient creates a Wikipedia API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
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

type searchResponse struct {
	Query struct {
		Search []SearchResult `json:"search"`
	} `json:"query"`
}

func (c *httpClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", fmt.Sprintf("%d", limit))
	params.Set("format", "json")

	var result searchResponse
	if err := c.get(ctx, params, &result); err != nil {
		return nil, eris.Wrap(err, "wikipedia: search")
	}
	return result.Query.Search, nil
}

type pageData struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
	FullURL string `json:"fullurl"`
	// The API reports missing pages as "" or true depending on
	// format version, so only presence matters.
	Missing   json.RawMessage `json:"missing,omitempty"`
	PageProps struct {
		Disambiguation *string `json:"disambiguation"`
	} `json:"pageprops"`
	ImageInfo []struct {
		URL string `json:"url"`
	} `json:"imageinfo"`
}

type pagesResponse struct {
	Query struct {
		Pages map[string]pageData `json:"pages"`
	} `json:"query"`
}

// GetPage fetches the plain-text intro extract, canonical URL and
// disambiguation flag for a title, following redirects.
func (c *httpClient) GetPage(ctx context.Context, title string) (*Page, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|pageprops|info")
	params.Set("titles", title)
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("inprop", "url")
	params.Set("format", "json")

	var result pagesResponse
	if err := c.get(ctx, params, &result); err != nil {
		return nil, eris.Wrapf(err, "wikipedia: get page %q", title)
	}

	for id, p := range result.Query.Pages {
		if id == "-1" || p.Missing != nil {
			return nil, eris.Errorf("wikipedia: page not found: %s", title)
		}
		return &Page{
			Title:          p.Title,
			Extract:        p.Extract,
			URL:            p.FullURL,
			Disambiguation: p.PageProps.Disambiguation != nil,
		}, nil
	}
	return nil, eris.Errorf("wikipedia: empty response for %s", title)
}

// GetImages returns image file URLs embedded in the article, filtered
// to photographic formats. SVG maps and icons are skipped.
func (c *httpClient) GetImages(ctx context.Context, title string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("generator", "images")
	params.Set("titles", title)
	params.Set("gimlimit", fmt.Sprintf("%d", limit))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url")
	params.Set("redirects", "1")
	params.Set("format", "json")

	var result pagesResponse
	if err := c.get(ctx, params, &result); err != nil {
		return nil, eris.Wrapf(err, "wikipedia: get images for %q", title)
	}

	var urls []string
	for _, p := range result.Query.Pages {
		for _, info := range p.ImageInfo {
			if isPhotoURL(info.URL) {
				urls = append(urls, info.URL)
			}
		}
	}
	return urls, nil
}

func isPhotoURL(u string) bool {
	lower := strings.ToLower(u)
	if strings.Contains(lower, "logo") || strings.Contains(lower, "icon") {
		return false
	}
	return strings.HasSuffix(lower, ".jpg") ||
		strings.HasSuffix(lower, ".jpeg") ||
		strings.HasSuffix(lower, ".png")
}

func (c *httpClient) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
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
