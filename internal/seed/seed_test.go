package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeSeedFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeSeedXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Landmarks")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "seed.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestDefaultNames(t *testing.T) {
	names := DefaultNames()
	require.Len(t, names, 15)
	assert.Equal(t, "Eiffel Tower", names[0])
	assert.Contains(t, names, "Sagrada Familia")
	assert.Contains(t, names, "Saint Basil's Cathedral")
}

func TestDefaultRecords(t *testing.T) {
	records := DefaultRecords()
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "The Valley of Kings", rec.Landmark.Name)
	assert.Equal(t, "Egypt", rec.Landmark.Country)
	assert.Equal(t, "Luxor", rec.Landmark.City)
	assert.InDelta(t, 25.7408, rec.Landmark.Latitude, 0.0001)
	assert.Len(t, rec.Detail.OpeningHours, 7)
	assert.Equal(t, "$10", rec.Detail.TicketPrices["Adult"])
	assert.NotEmpty(t, rec.Detail.HistoricalSignificance)
}

func TestLoadRecords_EmptyPathUsesDefaults(t *testing.T) {
	records, err := LoadRecords("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRecords(), records)
}

func TestLoadRecords_JSON(t *testing.T) {
	path := writeSeedFile(t, "seed.json", `[
		{
			"landmark": {
				"name": "Petra",
				"description": "An ancient city carved into rock.",
				"latitude": 30.3285,
				"longitude": 35.4444,
				"country": "Jordan",
				"city": "Wadi Musa",
				"category": "Archaeological Site"
			},
			"landmark_detail": {
				"ticket_prices": {"Adult": "50 JOD"},
				"visitor_tips": "Arrive early."
			}
		}
	]`)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Petra", records[0].Landmark.Name)
	assert.Equal(t, "Jordan", records[0].Landmark.Country)
	assert.Equal(t, "50 JOD", records[0].Detail.TicketPrices["Adult"])
}

func TestLoadRecords_YAML(t *testing.T) {
	path := writeSeedFile(t, "seed.yaml", `
- landmark:
    name: Stonehenge
    description: A prehistoric stone circle.
    latitude: 51.1789
    longitude: -1.8262
    country: United Kingdom
    city: Amesbury
    category: Monument
  landmark_detail:
    opening_hours:
      Monday: "9:30 AM - 5:00 PM"
    visitor_tips: Book timed tickets.
`)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Stonehenge", records[0].Landmark.Name)
	assert.InDelta(t, -1.8262, records[0].Landmark.Longitude, 0.0001)
	assert.Equal(t, "9:30 AM - 5:00 PM", records[0].Detail.OpeningHours["Monday"])
}

func TestLoadRecords_XLSX(t *testing.T) {
	path := writeSeedXLSX(t, [][]string{
		{"name", "description", "latitude", "longitude", "country", "city", "category"},
		{"Angkor Wat", "A vast temple complex.", "13.4125", "103.8670", "Cambodia", "Siem Reap", "Religious Site"},
		{"", "", "", "", "", "", ""},
	})

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Angkor Wat", records[0].Landmark.Name)
	assert.InDelta(t, 13.4125, records[0].Landmark.Latitude, 0.0001)
	assert.Equal(t, "Religious Site", records[0].Landmark.Category)
}

func TestLoadRecords_XLSXBadLatitude(t *testing.T) {
	path := writeSeedXLSX(t, [][]string{
		{"name", "latitude"},
		{"Angkor Wat", "north-ish"},
	})

	_, err := LoadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}

func TestLoadRecords_XLSXMissingNameColumn(t *testing.T) {
	path := writeSeedXLSX(t, [][]string{
		{"description", "country"},
		{"A temple.", "Cambodia"},
	})

	_, err := LoadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name column")
}

func TestLoadRecords_UnsupportedFormat(t *testing.T) {
	path := writeSeedFile(t, "seed.csv", "name\nPetra\n")

	_, err := LoadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestLoadRecords_EmptyFile(t *testing.T) {
	path := writeSeedFile(t, "seed.json", `[]`)

	_, err := LoadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records")
}

func TestLoadRecords_BadJSON(t *testing.T) {
	path := writeSeedFile(t, "seed.json", `{not json`)

	_, err := LoadRecords(path)
	require.Error(t, err)
}

func TestLoadNames_EmptyPathUsesDefaults(t *testing.T) {
	names, err := LoadNames("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNames(), names)
}

func TestLoadNames_JSON(t *testing.T) {
	path := writeSeedFile(t, "names.json", `["Petra", "Angkor Wat"]`)

	names, err := LoadNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Petra", "Angkor Wat"}, names)
}

func TestLoadNames_YAML(t *testing.T) {
	path := writeSeedFile(t, "names.yml", "- Petra\n- Angkor Wat\n")

	names, err := LoadNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Petra", "Angkor Wat"}, names)
}

func TestLoadNames_XLSXSkipsHeader(t *testing.T) {
	path := writeSeedXLSX(t, [][]string{
		{"Name"},
		{"Petra"},
		{""},
		{"Angkor Wat"},
	})

	names, err := LoadNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Petra", "Angkor Wat"}, names)
}

func TestLoadNames_MissingFile(t *testing.T) {
	_, err := LoadNames(filepath.Join(t.TempDir(), "gone.json"))
	require.Error(t, err)
}
