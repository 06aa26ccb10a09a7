package aggregator

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gravgor/landmark-cli/internal/model"
)

const (
	wikiSearchLimit  = 5
	wikiImageLimit   = 10
	maxSourceReviews = 5
	maxSourcePhotos  = 5
	photoMaxWidth    = 800
	tripTimeout      = 30 * time.Second
)

// Phrases that introduce a landmark's location in article prose. The
// captures are loose on purpose; the geocoder cross-check below decides
// whether a candidate is real.
var countryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`located in (?:the )?([A-Za-z\s]+)`),
	regexp.MustCompile(`(?:is|was) a [^.]+? in (?:the )?([A-Za-z\s]+)`),
	regexp.MustCompile(`(?:is|was) an? [^.]+? in (?:the )?([A-Za-z\s]+)`),
}

var cityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`in ([A-Za-z\s]+)(?:,|\s+is)`),
	regexp.MustCompile(`located in ([A-Za-z\s]+),`),
	regexp.MustCompile(`situated in ([A-Za-z\s]+),`),
}

// FetchWikipedia resolves the landmark's article via search and digests
// it: cleaned summary, first usable photo, best-effort country/city, and
// geocoded coordinates used as a fallback when no places provider
// responds. Disambiguation pages resolve to the first alternative search
// hit. Any miss is logged and returns nil.
func (a *Aggregator) FetchWikipedia(ctx context.Context, name string) *model.WikiInfo {
	log := zap.L().With(zap.String("landmark", name))

	results, err := a.wiki.Search(ctx, name, wikiSearchLimit)
	if err != nil {
		log.Warn("wikipedia search failed", zap.Error(err))
		return nil
	}
	if len(results) == 0 {
		log.Warn("wikipedia search returned no results")
		return nil
	}

	page, err := a.wiki.GetPage(ctx, results[0].Title)
	if err != nil {
		log.Warn("wikipedia page fetch failed", zap.String("title", results[0].Title), zap.Error(err))
		return nil
	}
	if page.Disambiguation {
		if len(results) < 2 {
			log.Warn("wikipedia disambiguation has no alternative", zap.String("title", page.Title))
			return nil
		}
		page, err = a.wiki.GetPage(ctx, results[1].Title)
		if err != nil {
			log.Warn("wikipedia alternative fetch failed", zap.String("title", results[1].Title), zap.Error(err))
			return nil
		}
		if page.Disambiguation {
			log.Warn("wikipedia alternative is also a disambiguation", zap.String("title", page.Title))
			return nil
		}
	}

	info := &model.WikiInfo{
		Title:       page.Title,
		Description: CleanText(page.Extract),
		URL:         page.URL,
	}

	images, err := a.wiki.GetImages(ctx, page.Title, wikiImageLimit)
	if err != nil {
		log.Debug("wikipedia image listing failed", zap.Error(err))
	} else if len(images) > 0 && ValidateURL(images[0]) {
		info.ImageURL = images[0]
	}

	if res, lookupErr := a.geo.Lookup(ctx, name); lookupErr != nil {
		log.Warn("could not geocode landmark", zap.Error(lookupErr))
	} else if res.Matched {
		info.Latitude = res.Latitude
		info.Longitude = res.Longitude
		info.HasCoords = true
	}

	info.Country, info.City = a.extractLocation(ctx, page.Extract)

	log.Info("wikipedia data retrieved", zap.String("title", page.Title))
	return info
}

// extractLocation pulls country and city candidates out of article text
// and keeps the first candidate the geocoder classifies as the right
// kind of place.
func (a *Aggregator) extractLocation(ctx context.Context, content string) (country, city string) {
	for _, re := range countryPatterns {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if a.placeTypeIs(ctx, candidate, "country") {
			country = candidate
			break
		}
	}
	for _, re := range cityPatterns {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if a.placeTypeIs(ctx, candidate, "city", "town", "village") {
			city = candidate
			break
		}
	}
	return country, city
}

// placeTypeIs geocodes a candidate name and reports whether Nominatim's
// address type is one of the accepted kinds.
func (a *Aggregator) placeTypeIs(ctx context.Context, candidate string, accepted ...string) bool {
	res, err := a.geo.Lookup(ctx, candidate)
	if err != nil || !res.Matched {
		return false
	}
	for _, t := range accepted {
		if res.Type == t {
			return true
		}
	}
	return false
}

// FetchPlaces looks the landmark up in the places API and digests the
// first hit's details: coordinates, rating, hours, up to five reviews
// and five photo URLs. Any failure is logged and returns nil.
func (a *Aggregator) FetchPlaces(ctx context.Context, name string) *model.PlacesInfo {
	log := zap.L().With(zap.String("landmark", name))

	search, err := a.places.TextSearch(ctx, name)
	if err != nil {
		log.Warn("places search failed", zap.Error(err))
		return nil
	}
	if len(search.Results) == 0 {
		log.Warn("places search returned no results")
		return nil
	}
	first := search.Results[0]

	details, err := a.places.Details(ctx, first.PlaceID)
	if err != nil {
		log.Warn("places details failed", zap.String("place_id", first.PlaceID), zap.Error(err))
		return nil
	}
	result := details.Result

	info := &model.PlacesInfo{
		Name:       result.Name,
		Address:    result.FormattedAddress,
		Latitude:   first.Geometry.Location.Lat,
		Longitude:  first.Geometry.Location.Lng,
		Rating:     result.Rating,
		PriceLevel: result.PriceLevel,
	}
	if result.OpeningHours != nil {
		info.OpeningHours = result.OpeningHours.WeekdayText
	}
	for i, r := range result.Reviews {
		if i == maxSourceReviews {
			break
		}
		info.Reviews = append(info.Reviews, model.Review{
			Text:   r.Text,
			Rating: r.Rating,
			Date:   time.Unix(r.Time, 0).UTC().Format("2006-01-02"),
		})
	}
	for i, p := range result.Photos {
		if i == maxSourcePhotos {
			break
		}
		info.PhotoURLs = append(info.PhotoURLs, a.places.PhotoURL(p.PhotoReference, photoMaxWidth))
	}

	log.Info("places data retrieved", zap.String("place_id", first.PlaceID))
	return info
}

// FetchTripAdvisor scrapes the attraction page under a fixed wall-clock
// timeout. Ticket prices are normalized where an amount parses; the
// overall rating is the mean of the scraped reviews. Any failure is
// logged and returns nil.
func (a *Aggregator) FetchTripAdvisor(ctx context.Context, name string) *model.TripInfo {
	log := zap.L().With(zap.String("landmark", name))

	tctx, cancel := context.WithTimeout(ctx, tripTimeout)
	defer cancel()

	att, err := a.trip.Attraction(tctx, name)
	if err != nil {
		log.Warn("tripadvisor scrape failed", zap.Error(err))
		return nil
	}

	info := &model.TripInfo{
		OpeningHours: att.OpeningHours,
	}
	if len(att.TicketPrices) > 0 {
		info.TicketPrices = make(map[string]string, len(att.TicketPrices))
		for category, price := range att.TicketPrices {
			if normalized, ok := ValidatePrice(price); ok {
				price = normalized
			}
			info.TicketPrices[category] = price
		}
	}
	var total float64
	for _, r := range att.Reviews {
		info.Reviews = append(info.Reviews, model.Review{Text: r.Text, Rating: r.Rating, Date: r.Date})
		total += r.Rating
	}
	if len(info.Reviews) > 0 {
		info.Rating = total / float64(len(info.Reviews))
	}

	log.Info("tripadvisor data retrieved", zap.Int("reviews", len(info.Reviews)))
	return info
}
