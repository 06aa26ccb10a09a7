package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/internal/store"
)

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
var _ store.Store = (*mockStore)(nil)
