//go:build !integration

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravgor/landmark-cli/internal/config"
	"github.com/gravgor/landmark-cli/internal/importer"
)

// importTestConfig satisfies import validation without touching the
// network; tests that get past validation fail earlier than any dial.
func importTestConfig() *config.Config {
	c := &config.Config{}
	c.Unsplash.AccessKey = "unsplash-key"
	c.API.Key = "api-key"
	c.API.BearerToken = "bearer-token"
	c.Importer.ImageCount = 1
	return c
}

func TestImportCmd_Metadata(t *testing.T) {
	assert.Equal(t, "import", importCmd.Use)
	assert.NotEmpty(t, importCmd.Short)
}

func TestImportCmd_MissingCredentials(t *testing.T) {
	cfg = &config.Config{}
	cfg.Importer.ImageCount = 1

	importCmd.SetContext(context.Background())

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsplash.access_key is required")
	assert.Contains(t, err.Error(), "api.key is required")
	assert.Contains(t, err.Error(), "api.bearer_token is required")
}

func TestImportCmd_BadSeedPath(t *testing.T) {
	cfg = importTestConfig()

	importCmd.SetContext(context.Background())

	oldSeed := importSeedPath
	importSeedPath = "/nonexistent/path/to/landmarks.json"
	defer func() { importSeedPath = oldSeed }()

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load seed records")
}

func TestImportCmd_UnsupportedSeedFormat(t *testing.T) {
	cfg = importTestConfig()

	importCmd.SetContext(context.Background())

	oldSeed := importSeedPath
	importSeedPath = "landmarks.csv"
	defer func() { importSeedPath = oldSeed }()

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRenderImportResults(t *testing.T) {
	var buf bytes.Buffer
	renderImportResults(&buf, []importer.Result{
		{Name: "Eiffel Tower", Found: 5, Downloaded: 5, Uploaded: 5, Status: importer.StatusCreated},
		{Name: "Petra", Status: importer.StatusSkipped},
	})

	out := buf.String()
	assert.Contains(t, out, "Eiffel Tower")
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "Petra")
	assert.Contains(t, out, "skipped")
}

func TestRenderImportResults_EmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	renderImportResults(&buf, nil)
	assert.Zero(t, buf.Len())
}
