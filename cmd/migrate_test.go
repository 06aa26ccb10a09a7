//go:build !integration

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravgor/landmark-cli/internal/config"
	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/internal/store"
)

func TestMigrateCmd_Metadata(t *testing.T) {
	assert.Equal(t, "migrate", migrateCmd.Use)
	assert.NotEmpty(t, migrateCmd.Short)
}

func TestMigrateCmd_UnknownDriver(t *testing.T) {
	cfg = &config.Config{}
	cfg.Store.Driver = "mysql"

	migrateCmd.SetContext(context.Background())

	err := migrateCmd.RunE(migrateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestMigrateCmd_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "landmarks.db")
	cfg = &config.Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = dbPath

	migrateCmd.SetContext(context.Background())

	require.NoError(t, migrateCmd.RunE(migrateCmd, nil))

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "migration should create the database file")
}

func TestMigrateCmd_SeedsLandmarks(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "landmarks.db")

	records := []model.ImportRecord{
		{Landmark: model.Landmark{Name: "Eiffel Tower", Country: "France", City: "Paris"}},
		{Landmark: model.Landmark{Name: "Colosseum", Country: "Italy", City: "Rome"}},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, data, 0o644))

	cfg = &config.Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = dbPath

	oldSeed := migrateSeedPath
	migrateSeedPath = seedPath
	defer func() { migrateSeedPath = oldSeed }()

	migrateCmd.SetContext(context.Background())
	require.NoError(t, migrateCmd.RunE(migrateCmd, nil))

	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	landmarks, total, err := st.ListLandmarks(context.Background(), store.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	names := make([]string, 0, len(landmarks))
	for _, lm := range landmarks {
		names = append(names, lm.Name)
	}
	assert.ElementsMatch(t, []string{"Eiffel Tower", "Colosseum"}, names)
}

func TestMigrateCmd_BadSeedPath(t *testing.T) {
	cfg = &config.Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = filepath.Join(t.TempDir(), "landmarks.db")

	oldSeed := migrateSeedPath
	migrateSeedPath = "/nonexistent/path/to/seed.json"
	defer func() { migrateSeedPath = oldSeed }()

	migrateCmd.SetContext(context.Background())

	err := migrateCmd.RunE(migrateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load seed records")
}
