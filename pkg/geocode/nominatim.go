package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// nominatimPlace is one entry of the search response. Coordinates
// arrive as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	AddressType string `json:"addresstype"`
}

// nominatimReverse is the reverse endpoint response.
type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// lookupNominatim resolves a query via the search endpoint.
func (g *geocoder) lookupNominatim(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}

	body, err := g.get(ctx, "/search", params)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: search %q", query)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "geocode: parse search response")
	}

	if len(places) == 0 {
		return &Result{Matched: false}, nil
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		return &Result{Matched: false}, nil
	}

	placeType := places[0].AddressType
	if placeType == "" {
		placeType = places[0].Type
	}

	return &Result{
		Latitude:    lat,
		Longitude:   lng,
		DisplayName: places[0].DisplayName,
		Type:        placeType,
		Matched:     true,
	}, nil
}

// reverseNominatim resolves coordinates via the reverse endpoint.
// Nominatim reports the locality as city, town or village depending on
// place size; the first non-empty one wins.
func (g *geocoder) reverseNominatim(ctx context.Context, lat, lng float64) (*ReverseResult, error) {
	params := url.Values{
		"lat":    {fmt.Sprintf("%f", lat)},
		"lon":    {fmt.Sprintf("%f", lng)},
		"format": {"json"},
	}

	body, err := g.get(ctx, "/reverse", params)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: reverse %f,%f", lat, lng)
	}

	var rev nominatimReverse
	if err := json.Unmarshal(body, &rev); err != nil {
		return nil, eris.Wrap(err, "geocode: parse reverse response")
	}

	city := rev.Address.City
	if city == "" {
		city = rev.Address.Town
	}
	if city == "" {
		city = rev.Address.Village
	}

	if rev.Address.Country == "" && city == "" {
		return &ReverseResult{Matched: false}, nil
	}

	return &ReverseResult{
		Country:     rev.Address.Country,
		City:        city,
		DisplayName: rev.DisplayName,
		Matched:     true,
	}, nil
}

func (g *geocoder) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	return body, nil
}
