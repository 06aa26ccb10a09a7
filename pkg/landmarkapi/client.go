// Package landmarkapi provides a client for the landmark backend API:
// batch photo upload and landmark creation.
package landmarkapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "http://localhost:5050"

// Client performs landmark API operations. Every request carries both
// the x-api-key header and a Bearer token.
type Client interface {
	UploadImages(ctx context.Context, paths []string) ([]string, error)
	CreateLandmark(ctx context.Context, req CreateRequest) error
}

// CreateRequest is the landmark creation payload. Landmark and
// LandmarkDetail are marshaled as given.
type CreateRequest struct {
	Landmark       any      `json:"landmark"`
	LandmarkDetail any      `json:"landmark_detail"`
	ImageURLs      []string `json:"image_urls"`
}

// UploadResponse is the response from the photo upload endpoint.
type UploadResponse struct {
	URLs []string `json:"urls"`
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
	apiKey      string
	bearerToken string
	baseURL     string
	http        *http.Client
}

// NewClient creates a landmark API client.
func NewClient(apiKey, bearerToken string, opts ...Option) Client {
	c := &httpClient{
		apiKey:      apiKey,
		bearerToken: bearerToken,
		baseURL:     defaultBaseURL,
		http: &http.Client{
			// Uploads carry full-size image payloads.
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) setAuth(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
}

// UploadImages sends all files in one multipart request under the
// "images" field and returns the hosted URLs.
func (c *httpClient) UploadImages(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, eris.New("landmarkapi: no files to upload")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "landmarkapi: open %s", path)
		}
		part, err := mw.CreateFormFile("images", filepath.Base(path))
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, eris.Wrap(err, "landmarkapi: create form file")
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "landmarkapi: copy %s", path)
		}
		f.Close() //nolint:errcheck
	}
	if err := mw.Close(); err != nil {
		return nil, eris.Wrap(err, "landmarkapi: close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/landmarks/upload-photo", &body)
	if err != nil {
		return nil, eris.Wrap(err, "landmarkapi: create upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "landmarkapi: send upload request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "landmarkapi: read upload response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("landmarkapi: upload status %d: %s", resp.StatusCode, string(respBody))
	}

	var result UploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "landmarkapi: unmarshal upload response")
	}

	return result.URLs, nil
}

// CreateLandmark posts the creation payload. The API answers 201 on
// success; anything else is an error.
func (c *httpClient) CreateLandmark(ctx context.Context, createReq CreateRequest) error {
	body, err := json.Marshal(createReq)
	if err != nil {
		return eris.Wrap(err, "landmarkapi: marshal create request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/landmarks/create", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "landmarkapi: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "landmarkapi: send create request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "landmarkapi: read create response")
	}

	if resp.StatusCode != http.StatusCreated {
		return eris.Errorf("landmarkapi: create status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
