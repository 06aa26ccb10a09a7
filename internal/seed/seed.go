// Package seed supplies the importer's seed records and the
// aggregator's landmark worklist, either from a file (JSON, YAML or
// XLSX, chosen by extension) or from the built-in defaults.
package seed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/gravgor/landmark-cli/internal/model"
)

// DefaultNames returns the built-in aggregation worklist.
func DefaultNames() []string {
	return []string{
		"Eiffel Tower",
		"Colosseum",
		"Taj Mahal",
		"Great Wall of China",
		"Petra",
		"Machu Picchu",
		"Christ the Redeemer",
		"Stonehenge",
		"Acropolis of Athens",
		"Angkor Wat",
		"Pyramids of Giza",
		"Tower of London",
		"Forbidden City",
		"Saint Basil's Cathedral",
		"Sagrada Familia",
	}
}

// DefaultRecords returns the built-in importer seed list.
func DefaultRecords() []model.ImportRecord {
	return []model.ImportRecord{
		{
			Landmark: model.Landmark{
				Name:        "The Valley of Kings",
				Description: "A famous archaeological site in Egypt, known for its numerous tombs of pharaohs and nobles from the New Kingdom.",
				Latitude:    25.7408,
				Longitude:   32.6010,
				Country:     "Egypt",
				City:        "Luxor",
				Category:    "Historical Landmark",
			},
			Detail: model.LandmarkDetail{
				OpeningHours: map[string]string{
					"Monday":    "6:00 AM - 5:00 PM",
					"Tuesday":   "6:00 AM - 5:00 PM",
					"Wednesday": "6:00 AM - 5:00 PM",
					"Thursday":  "6:00 AM - 5:00 PM",
					"Friday":    "6:00 AM - 5:00 PM",
					"Saturday":  "6:00 AM - 5:00 PM",
					"Sunday":    "6:00 AM - 5:00 PM",
				},
				TicketPrices: map[string]string{
					"Adult": "$10",
					"Child": "$5",
				},
				HistoricalSignificance: "The burial site of many pharaohs, including Tutankhamun and Ramses II, dating back to the 16th to 11th century BC.",
				VisitorTips:            "Purchase a combined ticket to access multiple tombs and consider hiring a guide for deeper insights.",
				AccessibilityInfo:      "Partially accessible",
			},
		},
	}
}

// LoadRecords reads importer seed records from path. An empty path
// selects the built-in defaults.
func LoadRecords(path string) ([]model.ImportRecord, error) {
	if path == "" {
		return DefaultRecords(), nil
	}

	var (
		records []model.ImportRecord
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		records, err = recordsFromJSON(path)
	case ".yaml", ".yml":
		records, err = recordsFromYAML(path)
	case ".xlsx":
		records, err = recordsFromXLSX(path)
	default:
		return nil, eris.Errorf("seed: unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, eris.Errorf("seed: %s contains no records", path)
	}
	return records, nil
}

// LoadNames reads an aggregation worklist from path. An empty path
// selects the built-in defaults.
func LoadNames(path string) ([]string, error) {
	if path == "" {
		return DefaultNames(), nil
	}

	var (
		names []string
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		names, err = namesFromJSON(path)
	case ".yaml", ".yml":
		names, err = namesFromYAML(path)
	case ".xlsx":
		names, err = namesFromXLSX(path)
	default:
		return nil, eris.Errorf("seed: unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, eris.Errorf("seed: %s contains no names", path)
	}
	return names, nil
}

func recordsFromJSON(path string) ([]model.ImportRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: read %s", path)
	}
	var records []model.ImportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "seed: parse %s", path)
	}
	return records, nil
}

func recordsFromYAML(path string) ([]model.ImportRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: read %s", path)
	}
	var records []model.ImportRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "seed: parse %s", path)
	}
	return records, nil
}

// recordsFromXLSX reads flat landmark rows: a header row naming at
// least "name", then one landmark per row. Detail fields don't fit a
// spreadsheet and stay empty.
func recordsFromXLSX(path string) ([]model.ImportRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("seed: %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.Errorf("seed: %s needs a header row and at least one landmark", path)
	}

	cols := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		cols[strings.ToLower(strings.TrimSpace(cell.String()))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, eris.Errorf("seed: %s is missing a name column", path)
	}

	var records []model.ImportRecord
	for i, row := range sheet.Rows[1:] {
		cell := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[idx].String())
		}

		name := cell("name")
		if name == "" {
			continue // trailing blank rows
		}

		var lm model.Landmark
		lm.Name = name
		lm.Description = cell("description")
		lm.Country = cell("country")
		lm.City = cell("city")
		lm.Category = cell("category")
		if raw := cell("latitude"); raw != "" {
			lm.Latitude, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "seed: %s row %d: latitude", path, i+2)
			}
		}
		if raw := cell("longitude"); raw != "" {
			lm.Longitude, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "seed: %s row %d: longitude", path, i+2)
			}
		}
		records = append(records, model.ImportRecord{Landmark: lm})
	}
	return records, nil
}

func namesFromJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: read %s", path)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, eris.Wrapf(err, "seed: parse %s", path)
	}
	return names, nil
}

func namesFromYAML(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: read %s", path)
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, eris.Wrapf(err, "seed: parse %s", path)
	}
	return names, nil
}

// namesFromXLSX reads the first column of the first sheet, skipping a
// "name" header row and blank cells.
func namesFromXLSX(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seed: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("seed: %s has no sheets", path)
	}

	var names []string
	for i, row := range f.Sheets[0].Rows {
		if len(row.Cells) == 0 {
			continue
		}
		name := strings.TrimSpace(row.Cells[0].String())
		if name == "" {
			continue
		}
		if i == 0 && strings.EqualFold(name, "name") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
