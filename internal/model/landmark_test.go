package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesFixedSet(t *testing.T) {
	t.Parallel()

	assert.Len(t, Categories, 10)
	assert.NotContains(t, Categories, CategoryUnknown)

	seen := make(map[string]bool)
	for _, c := range Categories {
		assert.False(t, seen[c], "duplicate category %q", c)
		seen[c] = true
	}
}

func TestLandmarkJSONRoundTrip(t *testing.T) {
	t.Parallel()

	l := Landmark{
		Name:        "Eiffel Tower",
		Description: "Wrought-iron lattice tower on the Champ de Mars.",
		Latitude:    48.8584,
		Longitude:   2.2945,
		Country:     "France",
		City:        "Paris",
		Category:    "Monument",
		ImagePaths:  []string{"https://example.com/eiffel.jpg"},
		DataSources: map[string]bool{SourceWikipedia: true, SourceGooglePlaces: true},
		Detail: &LandmarkDetail{
			OpeningHours: map[string]string{"Monday": "9:00 AM - 11:00 PM"},
			TicketPrices: map[string]string{"Adult": "€26.10"},
			Reviews:      []Review{{Text: "Stunning at night", Rating: 5, Date: "2024-03-01"}},
			Rating:       4.6,
		},
	}

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var got Landmark
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, l.Name, got.Name)
	assert.Equal(t, l.DataSources, got.DataSources)
	require.NotNil(t, got.Detail)
	assert.Equal(t, l.Detail.TicketPrices, got.Detail.TicketPrices)
	assert.Equal(t, l.Detail.Reviews, got.Detail.Reviews)
}

func TestImportRecordWireShape(t *testing.T) {
	t.Parallel()

	rec := ImportRecord{
		Landmark: Landmark{Name: "Petra"},
		Detail:   LandmarkDetail{VisitorTips: "Arrive before the tour buses."},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "landmark")
	assert.Contains(t, raw, "landmark_detail")
}

func TestUserPasswordHashNeverSerialized(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(User{Email: "a@b.c", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}
