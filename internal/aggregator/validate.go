package aggregator

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/rotisserie/eris"

	"github.com/gravgor/landmark-cli/internal/model"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	specialRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?-]`)
	priceRe      = regexp.MustCompile(`([€$£¥])?(\d+(?:\.\d{2})?)`)
)

// CleanText collapses runs of whitespace and strips characters outside
// the letters/digits/basic-punctuation whitelist.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	return specialRe.ReplaceAllString(text, "")
}

// ValidateCoordinates reports whether the pair is a plausible WGS84
// coordinate.
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidateURL reports whether raw is an absolute http(s) URL.
func ValidateURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateDateString reports whether the string parses as a calendar
// date in any common layout.
func ValidateDateString(s string) bool {
	_, err := dateparse.ParseAny(s)
	return err == nil
}

// ValidatePrice extracts the first currency-prefixed amount from a raw
// price string and normalizes it to "<symbol><amount>". Amounts without
// a symbol default to €. Returns false when no amount is present.
func ValidatePrice(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	m := priceRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	currency := m[1]
	if currency == "" {
		currency = "€"
	}
	return currency + m[2], true
}

// ValidateLandmark checks the merged record against the persistence
// schema: non-empty identity and location strings plus coordinate
// bounds. A non-nil error names the first failing field.
func ValidateLandmark(lm *model.Landmark) error {
	if lm == nil {
		return eris.New("landmark is nil")
	}
	if lm.Name == "" {
		return eris.New("name is empty")
	}
	if lm.Description == "" {
		return eris.New("description is empty")
	}
	if !ValidateCoordinates(lm.Latitude, lm.Longitude) {
		return eris.Errorf("coordinates out of range: %f, %f", lm.Latitude, lm.Longitude)
	}
	if lm.Country == "" {
		return eris.New("country is empty")
	}
	if lm.City == "" {
		return eris.New("city is empty")
	}
	if lm.Category == "" {
		return eris.New("category is empty")
	}
	return nil
}
