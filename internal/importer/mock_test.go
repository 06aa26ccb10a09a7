package importer

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/gravgor/landmark-cli/pkg/landmarkapi"
	"github.com/gravgor/landmark-cli/pkg/unsplash"
)

// --- Unsplash Mock ---

type mockUnsplashClient struct {
	mock.Mock
}

func (m *mockUnsplashClient) SearchPhotos(ctx context.Context, query string, perPage int) (*unsplash.SearchResponse, error) {
	args := m.Called(ctx, query, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unsplash.SearchResponse), args.Error(1)
}

func (m *mockUnsplashClient) Download(ctx context.Context, photoURL string, w io.Writer) (int64, error) {
	args := m.Called(ctx, photoURL, w)
	return args.Get(0).(int64), args.Error(1)
}

// --- Landmark API Mock ---

type mockAPIClient struct {
	mock.Mock
}

func (m *mockAPIClient) UploadImages(ctx context.Context, paths []string) ([]string, error) {
	args := m.Called(ctx, paths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockAPIClient) CreateLandmark(ctx context.Context, req landmarkapi.CreateRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// --- Ensure interface compliance ---
var (
	_ unsplash.Client    = (*mockUnsplashClient)(nil)
	_ landmarkapi.Client = (*mockAPIClient)(nil)
)
