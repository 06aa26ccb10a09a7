package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gravgor/landmark-cli/internal/classify"
	"github.com/gravgor/landmark-cli/internal/config"
	"github.com/gravgor/landmark-cli/internal/enrich"
	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/pkg/geocode"
	"github.com/gravgor/landmark-cli/pkg/places"
	"github.com/gravgor/landmark-cli/pkg/tripadvisor"
	"github.com/gravgor/landmark-cli/pkg/wikipedia"
)

type aggHarness struct {
	wiki   *mockWikiClient
	places *mockPlacesClient
	trip   *mockTripScraper
	geo    *mockGeoClient
	store  *mockStore
	agg    *Aggregator
}

func newAggHarness(cfg config.AggregatorConfig) *aggHarness {
	h := &aggHarness{
		wiki:   new(mockWikiClient),
		places: new(mockPlacesClient),
		trip:   new(mockTripScraper),
		geo:    new(mockGeoClient),
		store:  new(mockStore),
	}
	h.agg = New(cfg, h.store, h.wiki, h.places, h.trip, h.geo,
		classify.NewKeywordClassifier(), enrich.NewEnricher(0), nil)
	return h
}

// expectSources wires a wiki-plus-places hit for the name; the review
// site stays unreachable.
func (h *aggHarness) expectSources(name string) {
	h.wiki.On("Search", mock.Anything, name, wikiSearchLimit).
		Return([]wikipedia.SearchResult{{Title: name}}, nil)
	h.wiki.On("GetPage", mock.Anything, name).
		Return(&wikipedia.Page{
			Title:   name,
			Extract: "An ancient amphitheatre in Rome, Italy. It is located in Italy.",
			URL:     "https://en.wikipedia.org/wiki/" + name,
		}, nil)
	h.wiki.On("GetImages", mock.Anything, name, wikiImageLimit).
		Return([]string{}, nil)
	h.geo.On("Lookup", mock.Anything, name).
		Return(&geocode.Result{Matched: false}, nil)
	h.geo.On("Lookup", mock.Anything, "Italy").
		Return(&geocode.Result{Type: "country", Matched: true}, nil)
	h.geo.On("Lookup", mock.Anything, "Rome").
		Return(&geocode.Result{Type: "city", Matched: true}, nil)
	h.places.On("TextSearch", mock.Anything, name).
		Return(&places.TextSearchResponse{
			Status: "OK",
			Results: []places.SearchResult{{
				PlaceID:  "p-" + name,
				Geometry: places.Geometry{Location: places.LatLng{Lat: 41.8902, Lng: 12.4922}},
			}},
		}, nil)
	h.places.On("Details", mock.Anything, "p-"+name).
		Return(&places.DetailsResponse{
			Status: "OK",
			Result: places.Details{Name: name, Rating: 4.5},
		}, nil)
	h.trip.On("Attraction", mock.Anything, name).
		Return(nil, errors.New("blocked"))
}

// expectAllMiss wires every provider to fail for the name.
func (h *aggHarness) expectAllMiss(name string) {
	h.wiki.On("Search", mock.Anything, name, wikiSearchLimit).
		Return(nil, errors.New("down"))
	h.places.On("TextSearch", mock.Anything, name).
		Return(nil, errors.New("down"))
	h.trip.On("Attraction", mock.Anything, name).
		Return(nil, errors.New("down"))
}

// expectUpsert accepts a validated, timestamped record for the name and
// returns a stored copy with the given id.
func (h *aggHarness) expectUpsert(name, id string) {
	h.store.On("UpsertLandmark", mock.Anything, mock.MatchedBy(func(lm *model.Landmark) bool {
		return lm.Name == name && lm.ValidationStatus && !lm.LastUpdated.IsZero()
	})).Return(&model.Landmark{
		ID:          id,
		Name:        name,
		Description: "Completed in 1889 by Gustave Eiffel.",
		Latitude:    41.8902,
		Longitude:   12.4922,
		Country:     "Italy",
		City:        "Rome",
		Category:    "Historical Site",
		Detail:      &model.LandmarkDetail{Rating: 4.5},
	}, nil)
}

func TestRun_SavesMergedLandmarks(t *testing.T) {
	h := newAggHarness(config.AggregatorConfig{Workers: 1})
	h.expectSources("Colosseum")
	h.expectSources("Pantheon")
	h.expectUpsert("Colosseum", "lm-1")
	h.expectUpsert("Pantheon", "lm-2")

	results, err := h.agg.Run(context.Background(), []string{"Colosseum", "Pantheon"})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Colosseum", results[0].Name)
	assert.Equal(t, StatusSaved, results[0].Status)
	assert.Equal(t, "lm-1", results[0].Landmark.ID)
	assert.Equal(t, StatusSaved, results[1].Status)
	h.store.AssertNumberOfCalls(t, "UpsertLandmark", 2)

	// Post-merge annotations come from the collected run.
	require.NotNil(t, results[0].Enrichment)
	assert.Contains(t, results[0].Enrichment.Dates, "1889")
	assert.NotEmpty(t, results[0].Enrichment.Related)
}

func TestRun_ReviewSiteAloneIsNotEnough(t *testing.T) {
	h := newAggHarness(config.AggregatorConfig{Workers: 1})
	h.wiki.On("Search", mock.Anything, "Colosseum", wikiSearchLimit).
		Return(nil, errors.New("down"))
	h.places.On("TextSearch", mock.Anything, "Colosseum").
		Return(nil, errors.New("down"))
	h.trip.On("Attraction", mock.Anything, "Colosseum").
		Return(&tripadvisor.Attraction{
			Name:         "Colosseum",
			OpeningHours: map[string]string{"Monday": "8:30 AM - 7:00 PM"},
		}, nil)

	results, err := h.agg.Run(context.Background(), []string{"Colosseum"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusNoData, results[0].Status)
	assert.Nil(t, results[0].Landmark)
	h.store.AssertNotCalled(t, "UpsertLandmark", mock.Anything, mock.Anything)
}

func TestRun_InvalidRecordIsDiscarded(t *testing.T) {
	h := newAggHarness(config.AggregatorConfig{Workers: 1})

	// Wikipedia responds but the geocoder confirms no location candidate,
	// so the merged record has no country or city.
	h.wiki.On("Search", mock.Anything, "Colosseum", wikiSearchLimit).
		Return([]wikipedia.SearchResult{{Title: "Colosseum"}}, nil)
	h.wiki.On("GetPage", mock.Anything, "Colosseum").
		Return(&wikipedia.Page{
			Title:   "Colosseum",
			Extract: "An ancient amphitheatre in Rome, Italy. It is located in Italy.",
		}, nil)
	h.wiki.On("GetImages", mock.Anything, "Colosseum", wikiImageLimit).
		Return([]string{}, nil)
	h.geo.On("Lookup", mock.Anything, mock.Anything).
		Return(&geocode.Result{Matched: false}, nil)
	h.places.On("TextSearch", mock.Anything, "Colosseum").
		Return(nil, errors.New("down"))
	h.trip.On("Attraction", mock.Anything, "Colosseum").
		Return(nil, errors.New("down"))

	results, err := h.agg.Run(context.Background(), []string{"Colosseum"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusInvalid, results[0].Status)
	h.store.AssertNotCalled(t, "UpsertLandmark", mock.Anything, mock.Anything)
}

func TestRun_StoreErrorKeepsRecordInResults(t *testing.T) {
	h := newAggHarness(config.AggregatorConfig{Workers: 1})
	h.expectSources("Colosseum")
	h.store.On("UpsertLandmark", mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	results, err := h.agg.Run(context.Background(), []string{"Colosseum"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusSaveFailed, results[0].Status)
	require.NotNil(t, results[0].Landmark)
	assert.Equal(t, "Colosseum", results[0].Landmark.Name)
}

func TestRun_OneFailureDoesNotStopBatch(t *testing.T) {
	h := newAggHarness(config.AggregatorConfig{Workers: 1})
	h.expectSources("Colosseum")
	h.expectUpsert("Colosseum", "lm-1")
	h.expectAllMiss("Atlantis")

	results, err := h.agg.Run(context.Background(), []string{"Colosseum", "Atlantis"})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, StatusSaved, results[0].Status)
	assert.Equal(t, StatusNoData, results[1].Status)
	h.store.AssertNumberOfCalls(t, "UpsertLandmark", 1)
}

func TestRun_WritesBackupFile(t *testing.T) {
	backupPath := filepath.Join(t.TempDir(), "landmarks_data.json")
	h := newAggHarness(config.AggregatorConfig{Workers: 1, OutputFile: backupPath})
	h.expectSources("Colosseum")
	h.expectUpsert("Colosseum", "lm-1")

	_, err := h.agg.Run(context.Background(), []string{"Colosseum"})
	require.NoError(t, err)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)

	var records []struct {
		Landmark   model.Landmark        `json:"landmark"`
		Detail     *model.LandmarkDetail `json:"landmark_detail"`
		Enrichment *model.Enrichment     `json:"enrichment"`
	}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Colosseum", records[0].Landmark.Name)
	assert.Nil(t, records[0].Landmark.Detail)
	require.NotNil(t, records[0].Detail)
	assert.InDelta(t, 4.5, records[0].Detail.Rating, 0.0001)
	require.NotNil(t, records[0].Enrichment)
	assert.Contains(t, records[0].Enrichment.Dates, "1889")
}

func TestRun_ConcurrentWorkers(t *testing.T) {
	h := newAggHarness(config.AggregatorConfig{Workers: 4})
	names := []string{"Colosseum", "Pantheon", "Petra", "Stonehenge"}
	for _, name := range names {
		h.expectSources(name)
		h.expectUpsert(name, "lm-"+name)
	}

	results, err := h.agg.Run(context.Background(), names)

	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, StatusSaved, r.Status)
	}
	h.store.AssertNumberOfCalls(t, "UpsertLandmark", 4)
}

func TestRun_NoNamesIsNoop(t *testing.T) {
	h := newAggHarness(config.AggregatorConfig{Workers: 1})

	results, err := h.agg.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, results)
}
