// Package enrich derives informational extras from landmark data: date
// mentions, key phrases, and related-landmark links. Nothing here gates
// validation or persistence.
package enrich

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/gravgor/landmark-cli/internal/model"
)

const defaultRadiusKm = 50

// Relationship reasons attached to related landmarks.
const (
	ReasonSameCategory = "same_category"
	ReasonNearby       = "nearby"
)

// Candidate date shapes, longest alternatives first so "12 June 1889"
// is not split into "June 1889" plus a stray year.
var dateCandidateRe = regexp.MustCompile(
	`\b\d{1,2} [A-Z][a-z]+ [12]\d{3}\b` +
		`|\b[A-Z][a-z]+ \d{1,2}, [12]\d{3}\b` +
		`|\b[A-Z][a-z]+ [12]\d{3}\b` +
		`|\b[12]\d{3}\b`,
)

// Lowercase connectors allowed inside a capitalized phrase.
var phraseConnectors = map[string]bool{
	"of": true, "the": true, "de": true, "la": true, "du": true,
	"des": true, "and": true,
}

// Enricher computes enrichment data for merged landmark records.
type Enricher struct {
	radiusKm float64
}

// NewEnricher creates an Enricher; radiusKm <= 0 selects the 50 km default.
func NewEnricher(radiusKm float64) *Enricher {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}
	return &Enricher{radiusKm: radiusKm}
}

// Enrich assembles the full enrichment for one landmark against the
// rest of the batch.
func (e *Enricher) Enrich(lm model.Landmark, all []model.Landmark) model.Enrichment {
	return model.Enrichment{
		Dates:      e.ExtractDates(lm.Description),
		KeyPhrases: e.ExtractKeyPhrases(lm.Description),
		Related:    e.FindRelated(lm, all),
	}
}

// ExtractDates returns date-shaped mentions from the text that survive
// an actual parse, de-duplicated in order of first appearance.
func (e *Enricher) ExtractDates(text string) []string {
	var dates []string
	seen := make(map[string]bool)
	for _, candidate := range dateCandidateRe.FindAllString(text, -1) {
		if seen[candidate] {
			continue
		}
		if _, err := dateparse.ParseAny(candidate); err != nil {
			continue
		}
		seen[candidate] = true
		dates = append(dates, candidate)
	}
	return dates
}

// ExtractKeyPhrases returns runs of two or more capitalized words,
// allowing lowercase connectors like "of" inside a run.
func (e *Enricher) ExtractKeyPhrases(text string) []string {
	var phrases []string
	seen := make(map[string]bool)

	var run []string
	capCount := 0
	flush := func() {
		// Trim trailing connectors left dangling at the end of a run.
		for len(run) > 0 && phraseConnectors[run[len(run)-1]] {
			run = run[:len(run)-1]
		}
		if capCount >= 2 {
			phrase := strings.Join(run, " ")
			if !seen[phrase] {
				seen[phrase] = true
				phrases = append(phrases, phrase)
			}
		}
		run = nil
		capCount = 0
	}

	for _, token := range strings.Fields(text) {
		word := strings.Trim(token, `.,!?;:()"'`)
		if word == "" {
			flush()
			continue
		}
		switch {
		case isCapitalized(word):
			run = append(run, word)
			capCount++
		case len(run) > 0 && phraseConnectors[strings.ToLower(word)]:
			run = append(run, strings.ToLower(word))
		default:
			flush()
		}
		// Sentence punctuation breaks a run even after a capitalized word.
		if strings.ContainsAny(token, ".!?;") {
			flush()
		}
	}
	flush()
	return phrases
}

// FindRelated links a landmark to others in the batch that share a
// category or sit within the configured radius. A neighbor matching
// both conditions appears twice, once per reason.
func (e *Enricher) FindRelated(lm model.Landmark, all []model.Landmark) []model.RelatedLandmark {
	var related []model.RelatedLandmark
	from := orb.Point{lm.Longitude, lm.Latitude}

	for _, other := range all {
		if other.Name == lm.Name {
			continue
		}
		if other.Category != "" && other.Category == lm.Category {
			related = append(related, model.RelatedLandmark{
				Name:   other.Name,
				Reason: ReasonSameCategory,
			})
		}
		distKm := geo.Distance(from, orb.Point{other.Longitude, other.Latitude}) / 1000
		if distKm <= e.radiusKm {
			related = append(related, model.RelatedLandmark{
				Name:   other.Name,
				Reason: ReasonNearby,
			})
		}
	}
	return related
}

func isCapitalized(word string) bool {
	if word == "" {
		return false
	}
	first := word[0]
	return first >= 'A' && first <= 'Z'
}
