package aggregator

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/internal/store"
	"github.com/gravgor/landmark-cli/pkg/geocode"
	"github.com/gravgor/landmark-cli/pkg/places"
	"github.com/gravgor/landmark-cli/pkg/tripadvisor"
	"github.com/gravgor/landmark-cli/pkg/wikipedia"
)

// --- Wikipedia Mock ---

type mockWikiClient struct {
	mock.Mock
}

func (m *mockWikiClient) Search(ctx context.Context, query string, limit int) ([]wikipedia.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wikipedia.SearchResult), args.Error(1)
}

func (m *mockWikiClient) GetPage(ctx context.Context, title string) (*wikipedia.Page, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wikipedia.Page), args.Error(1)
}

func (m *mockWikiClient) GetImages(ctx context.Context, title string, limit int) ([]string, error) {
	args := m.Called(ctx, title, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Places Mock ---

type mockPlacesClient struct {
	mock.Mock
}

func (m *mockPlacesClient) TextSearch(ctx context.Context, query string) (*places.TextSearchResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.TextSearchResponse), args.Error(1)
}

func (m *mockPlacesClient) Details(ctx context.Context, placeID string) (*places.DetailsResponse, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.DetailsResponse), args.Error(1)
}

func (m *mockPlacesClient) PhotoURL(photoReference string, maxWidth int) string {
	args := m.Called(photoReference, maxWidth)
	return args.String(0)
}

// --- TripAdvisor Mock ---

type mockTripScraper struct {
	mock.Mock
}

func (m *mockTripScraper) Attraction(ctx context.Context, name string) (*tripadvisor.Attraction, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tripadvisor.Attraction), args.Error(1)
}

// --- Geocode Mock ---

type mockGeoClient struct {
	mock.Mock
}

func (m *mockGeoClient) Lookup(ctx context.Context, query string) (*geocode.Result, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.Result), args.Error(1)
}

func (m *mockGeoClient) Reverse(ctx context.Context, lat, lng float64) (*geocode.ReverseResult, error) {
	args := m.Called(ctx, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.ReverseResult), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) UpsertLandmark(ctx context.Context, lm *model.Landmark) (*model.Landmark, error) {
	args := m.Called(ctx, lm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Landmark), args.Error(1)
}

func (m *mockStore) GetLandmarkByName(ctx context.Context, name string) (*model.Landmark, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Landmark), args.Error(1)
}

func (m *mockStore) GetLandmarkByID(ctx context.Context, id string) (*model.Landmark, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Landmark), args.Error(1)
}

func (m *mockStore) ListLandmarks(ctx context.Context, filter store.ListFilter) ([]model.Landmark, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Landmark), args.Int(1), args.Error(2)
}

func (m *mockStore) SeedLandmarks(ctx context.Context, landmarks []model.Landmark) (int64, error) {
	args := m.Called(ctx, landmarks)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	args := m.Called(ctx, name, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Ensure interface compliance ---
var (
	_ wikipedia.Client    = (*mockWikiClient)(nil)
	_ places.Client       = (*mockPlacesClient)(nil)
	_ tripadvisor.Scraper = (*mockTripScraper)(nil)
	_ geocode.Client      = (*mockGeoClient)(nil)
	_ store.Store         = (*mockStore)(nil)
)
