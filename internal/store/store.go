package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gravgor/landmark-cli/internal/model"
)

// ErrEmailTaken is returned by CreateUser when the email is already
// registered.
var ErrEmailTaken = eris.New("store: email already registered")

// ListFilter specifies criteria for listing landmarks.
type ListFilter struct {
	Category string `json:"category,omitempty"`
	Country  string `json:"country,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for landmark data.
type Store interface {
	// Landmarks
	UpsertLandmark(ctx context.Context, lm *model.Landmark) (*model.Landmark, error)
	GetLandmarkByName(ctx context.Context, name string) (*model.Landmark, error)
	GetLandmarkByID(ctx context.Context, id string) (*model.Landmark, error)
	ListLandmarks(ctx context.Context, filter ListFilter) ([]model.Landmark, int, error)
	SeedLandmarks(ctx context.Context, landmarks []model.Landmark) (int64, error)

	// Users
	CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
