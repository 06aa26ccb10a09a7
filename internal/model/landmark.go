package model

import "time"

// Data source names recorded in a merged landmark's DataSources map.
const (
	SourceWikipedia    = "wikipedia"
	SourceGooglePlaces = "google_places"
	SourceTripAdvisor  = "tripadvisor"
)

// CategoryUnknown is assigned when the description is empty or no
// category label can be matched.
const CategoryUnknown = "Unknown"

// Categories is the fixed label set a merged description is classified
// against.
var Categories = []string{
	"Historical Site",
	"Museum",
	"Religious Site",
	"Natural Wonder",
	"Archaeological Site",
	"Modern Architecture",
	"Palace",
	"Castle",
	"Monument",
	"Park or Garden",
}

// Landmark is the core point-of-interest record. Name is the natural key;
// persistence is full-record upsert keyed on it. YAML tags mirror the
// JSON names so seed files can use either format.
type Landmark struct {
	ID               string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name             string          `json:"name" yaml:"name"`
	Description      string          `json:"description" yaml:"description"`
	Latitude         float64         `json:"latitude" yaml:"latitude"`
	Longitude        float64         `json:"longitude" yaml:"longitude"`
	Country          string          `json:"country" yaml:"country"`
	City             string          `json:"city" yaml:"city"`
	Category         string          `json:"category" yaml:"category"`
	ImagePaths       []string        `json:"image_paths,omitempty" yaml:"image_paths,omitempty"`
	DataSources      map[string]bool `json:"data_sources,omitempty" yaml:"data_sources,omitempty"`
	ValidationStatus bool            `json:"validation_status" yaml:"validation_status"`
	LastUpdated      time.Time       `json:"last_updated" yaml:"last_updated"`
	Detail           *LandmarkDetail `json:"landmark_detail,omitempty" yaml:"landmark_detail,omitempty"`
}

// LandmarkDetail is the semi-structured blob attached to a landmark:
// one per record, stored as JSON rather than normalized columns.
type LandmarkDetail struct {
	OpeningHours           map[string]string `json:"opening_hours,omitempty" yaml:"opening_hours,omitempty"`
	TicketPrices           map[string]string `json:"ticket_prices,omitempty" yaml:"ticket_prices,omitempty"`
	HistoricalSignificance string            `json:"historical_significance,omitempty" yaml:"historical_significance,omitempty"`
	VisitorTips            string            `json:"visitor_tips,omitempty" yaml:"visitor_tips,omitempty"`
	AccessibilityInfo      string            `json:"accessibility_info,omitempty" yaml:"accessibility_info,omitempty"`
	Reviews                []Review          `json:"reviews,omitempty" yaml:"reviews,omitempty"`
	Rating                 float64           `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// Review is a single third-party visitor review.
type Review struct {
	Text   string  `json:"text" yaml:"text"`
	Rating float64 `json:"rating" yaml:"rating"`
	Date   string  `json:"date" yaml:"date"`
}

// WikiInfo is the digested Wikipedia contribution for one landmark.
// Country and City are best-effort regex extractions cross-checked
// against the geocoder; Latitude/Longitude come from geocoding the
// landmark name and serve only as a fallback when the places provider
// contributed nothing.
type WikiInfo struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url,omitempty"`
	URL         string  `json:"url,omitempty"`
	Country     string  `json:"country,omitempty"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	HasCoords   bool    `json:"has_coords,omitempty"`
}

// PlacesInfo is the digested places-API contribution for one landmark.
type PlacesInfo struct {
	Name         string   `json:"name"`
	Address      string   `json:"address,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Rating       float64  `json:"rating,omitempty"`
	Reviews      []Review `json:"reviews,omitempty"`
	PhotoURLs    []string `json:"photos,omitempty"`
	OpeningHours []string `json:"opening_hours,omitempty"`
	PriceLevel   int      `json:"price_level,omitempty"`
}

// TripInfo is the digested review-site contribution for one landmark.
type TripInfo struct {
	OpeningHours map[string]string `json:"opening_hours,omitempty"`
	TicketPrices map[string]string `json:"ticket_prices,omitempty"`
	Reviews      []Review          `json:"reviews,omitempty"`
	Rating       float64           `json:"rating,omitempty"`
}

// ImportRecord is one importer seed entry: the landmark facts plus the
// detail blob submitted alongside the uploaded image URLs.
type ImportRecord struct {
	Landmark Landmark       `json:"landmark" yaml:"landmark"`
	Detail   LandmarkDetail `json:"landmark_detail" yaml:"landmark_detail"`
}

// RelatedLandmark names a landmark related to another by category or
// proximity, with the reason it qualified.
type RelatedLandmark struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Enrichment holds the optional post-merge annotations. Informational
// only: never validated, never gates persistence.
type Enrichment struct {
	Dates      []string          `json:"dates,omitempty"`
	KeyPhrases []string          `json:"key_phrases,omitempty"`
	Related    []RelatedLandmark `json:"related,omitempty"`
}

// User is an API account for the serve surface.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
