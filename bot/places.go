package main

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"gourmet-linebot/models"
)

// placesAPI is the slice of *maps.Client the bot uses; tests substitute fakes.
type placesAPI interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
}

// PlacesClient wraps the Google Places text-search and details endpoints.
type PlacesClient struct {
	api      placesAPI
	language string
}

func NewPlacesClient(apiKey, language string) (*PlacesClient, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}

	return &PlacesClient{api: client, language: language}, nil
}

// SearchRestaurants runs a restaurant-typed text search and returns up to
// limit venues in ranked order. A non-OK API status surfaces as an error from
// the maps client.
func (p *PlacesClient) SearchRestaurants(ctx context.Context, query string, limit int) ([]models.Venue, error) {
	resp, err := p.api.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Type:     maps.PlaceTypeRestaurant,
		Language: p.language,
	})
	if err != nil {
		placesCallsTotal.WithLabelValues("textsearch", "error").Inc()
		return nil, fmt.Errorf("places text search %q: %w", query, err)
	}
	placesCallsTotal.WithLabelValues("textsearch", "ok").Inc()

	results := resp.Results
	if len(results) > limit {
		results = results[:limit]
	}

	venues := make([]models.Venue, 0, len(results))
	for _, r := range results {
		venue := models.Venue{
			PlaceID:        r.PlaceID,
			Name:           r.Name,
			Rating:         float64(r.Rating),
			Address:        r.FormattedAddress,
			BusinessStatus: r.BusinessStatus,
		}
		if r.OpeningHours != nil {
			venue.OpenNow = r.OpeningHours.OpenNow
		}
		venues = append(venues, venue)
	}

	return venues, nil
}

// HighRatingReviews fetches the venue's reviews, keeping only the non-empty
// texts rated at or above minRating.
func (p *PlacesClient) HighRatingReviews(ctx context.Context, placeID string, minRating int) ([]string, error) {
	resp, err := p.api.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: p.language,
	})
	if err != nil {
		placesCallsTotal.WithLabelValues("details", "error").Inc()
		return nil, fmt.Errorf("place details %s: %w", placeID, err)
	}
	placesCallsTotal.WithLabelValues("details", "ok").Inc()

	entries := make([]models.ReviewEntry, 0, len(resp.Reviews))
	for _, review := range resp.Reviews {
		entries = append(entries, models.ReviewEntry{Rating: review.Rating, Text: review.Text})
	}

	return filterReviews(entries, minRating), nil
}

// filterReviews keeps the non-empty texts rated at or above minRating, in the
// order the API returned them.
func filterReviews(entries []models.ReviewEntry, minRating int) []string {
	var texts []string
	for _, entry := range entries {
		if entry.Rating >= minRating && entry.Text != "" {
			texts = append(texts, entry.Text)
		}
	}

	return texts
}
