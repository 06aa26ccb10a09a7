package aggregator

import (
	"context"

	"go.uber.org/zap"

	"github.com/gravgor/landmark-cli/internal/model"
)

// Combine merges the per-source digests into a single landmark record.
// The merge is deterministic: identical inputs produce an identical
// record. Wikipedia contributes description, primary image, country and
// city; the places provider contributes coordinates, photos, rating and
// reviews; the review site contributes hours, prices and more reviews,
// later sources winning on key collision. Wikipedia coordinates apply
// only when the places provider contributed nothing.
func (a *Aggregator) Combine(ctx context.Context, name string, wiki *model.WikiInfo, google *model.PlacesInfo, trip *model.TripInfo) *model.Landmark {
	lm := &model.Landmark{
		Name:        name,
		Category:    model.CategoryUnknown,
		DataSources: make(map[string]bool),
		Detail:      &model.LandmarkDetail{},
	}

	if wiki != nil {
		lm.Description = CleanText(wiki.Description)
		if wiki.ImageURL != "" {
			lm.ImagePaths = append(lm.ImagePaths, wiki.ImageURL)
		}
		lm.Country = wiki.Country
		lm.City = wiki.City
		if wiki.HasCoords {
			lm.Latitude = wiki.Latitude
			lm.Longitude = wiki.Longitude
		}
		lm.DataSources[model.SourceWikipedia] = true
	}

	if google != nil {
		lm.Latitude = google.Latitude
		lm.Longitude = google.Longitude
		lm.ImagePaths = append(lm.ImagePaths, google.PhotoURLs...)
		lm.Detail.Rating = google.Rating
		lm.Detail.Reviews = append(lm.Detail.Reviews, google.Reviews...)
		lm.DataSources[model.SourceGooglePlaces] = true
	}

	if trip != nil {
		if len(trip.OpeningHours) > 0 {
			if lm.Detail.OpeningHours == nil {
				lm.Detail.OpeningHours = make(map[string]string, len(trip.OpeningHours))
			}
			for day, hours := range trip.OpeningHours {
				lm.Detail.OpeningHours[day] = hours
			}
		}
		if len(trip.TicketPrices) > 0 {
			if lm.Detail.TicketPrices == nil {
				lm.Detail.TicketPrices = make(map[string]string, len(trip.TicketPrices))
			}
			for category, price := range trip.TicketPrices {
				lm.Detail.TicketPrices[category] = price
			}
		}
		lm.Detail.Reviews = append(lm.Detail.Reviews, trip.Reviews...)
		lm.DataSources[model.SourceTripAdvisor] = true
	}

	if lm.Description != "" {
		category, err := a.classifier.Classify(ctx, lm.Description)
		if err != nil {
			zap.L().Warn("classification failed", zap.String("landmark", name), zap.Error(err))
		} else if category != "" {
			lm.Category = category
		}
	}

	return lm
}
