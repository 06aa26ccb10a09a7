// Package classify assigns category labels to landmark descriptions.
package classify

import (
	"context"
	"strings"

	a "github.com/petar-dambovaliev/aho-corasick"

	"github.com/gravgor/landmark-cli/internal/model"
)

// Classifier assigns one of the fixed category labels to a description.
// Implementations return model.CategoryUnknown when no label fits.
type Classifier interface {
	Classify(ctx context.Context, description string) (string, error)
}

// Keyword lists per category. Matching is case-insensitive on whole
// words, so plural forms that matter are listed explicitly.
var categoryKeywords = map[string][]string{
	"Historical Site": {
		"historic", "historical", "ancient", "heritage", "medieval",
		"battlefield", "colonial", "dynasty", "empire",
	},
	"Museum": {
		"museum", "gallery", "exhibition", "exhibitions", "collection", "artifacts",
	},
	"Religious Site": {
		"church", "cathedral", "temple", "temples", "mosque", "shrine",
		"monastery", "basilica", "synagogue", "chapel", "pilgrimage", "sacred",
	},
	"Natural Wonder": {
		"mountain", "waterfall", "canyon", "reef", "glacier", "volcano",
		"cliff", "cliffs", "cave", "gorge", "geyser",
	},
	"Archaeological Site": {
		"archaeological", "ruins", "excavation", "excavations", "tomb",
		"tombs", "necropolis", "prehistoric", "pyramid", "pyramids",
	},
	"Modern Architecture": {
		"skyscraper", "modern", "contemporary", "futuristic", "steel",
	},
	"Palace": {
		"palace", "royal", "imperial", "residence",
	},
	"Castle": {
		"castle", "fortress", "fort", "fortification", "fortifications",
		"citadel", "stronghold", "moat",
	},
	"Monument": {
		"monument", "memorial", "statue", "obelisk", "mausoleum", "arch",
	},
	"Park or Garden": {
		"park", "garden", "gardens", "botanical", "arboretum",
	},
}

// Tie-break order when two labels match the same number of keywords:
// more specific categories win over broader ones.
var categoryPriority = map[string]int{
	"Archaeological Site": 1,
	"Castle":              2,
	"Palace":              3,
	"Religious Site":      4,
	"Museum":              5,
	"Monument":            6,
	"Park or Garden":      7,
	"Natural Wonder":      8,
	"Modern Architecture": 9,
	"Historical Site":     10,
}

// KeywordClassifier matches category keywords with a single Aho-Corasick
// scan over the description. The label with the most keyword hits wins.
type KeywordClassifier struct {
	matcher         a.AhoCorasick
	keywordCategory map[string]string
}

// NewKeywordClassifier builds the matcher from the fixed keyword lists.
func NewKeywordClassifier() *KeywordClassifier {
	builder := a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})

	keywordCategory := make(map[string]string)
	var keywords []string
	for category, words := range categoryKeywords {
		for _, w := range words {
			keywordCategory[w] = category
			keywords = append(keywords, w)
		}
	}

	return &KeywordClassifier{
		matcher:         builder.Build(keywords),
		keywordCategory: keywordCategory,
	}
}

func (c *KeywordClassifier) Classify(_ context.Context, description string) (string, error) {
	description = strings.ToLower(description)
	if strings.TrimSpace(description) == "" {
		return model.CategoryUnknown, nil
	}

	// Scan the description once with the single matcher.
	matches := c.matcher.FindAll(description)
	if len(matches) == 0 {
		return model.CategoryUnknown, nil
	}

	counts := make(map[string]int)
	for _, match := range matches {
		matchedWord := description[match.Start():match.End()]
		if category, ok := c.keywordCategory[matchedWord]; ok {
			counts[category]++
		}
	}

	best := model.CategoryUnknown
	bestCount := 0
	bestPriority := 999
	for category, n := range counts {
		priority := categoryPriority[category]
		if n > bestCount || (n == bestCount && priority < bestPriority) {
			best = category
			bestCount = n
			bestPriority = priority
		}
	}
	return best, nil
}
