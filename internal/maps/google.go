package maps

import (
	"context"
	"fmt"

	gmaps "googlemaps.github.io/maps"

	"gocab/internal/types"
)

// GoogleProvider implements Provider on top of the Google Maps APIs.
type GoogleProvider struct {
	client *gmaps.Client
}

// NewGoogleProvider creates a GoogleProvider with the given API key.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("maps: api key not configured")
	}
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Geocode(ctx context.Context, address string) (types.Point, error) {
	results, err := p.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	if err != nil {
		return types.Point{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return types.Point{}, ErrNotFound
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func (p *GoogleProvider) DistanceTime(ctx context.Context, origin, destination string) (Route, error) {
	resp, err := p.client.DistanceMatrix(ctx, &gmaps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
	})
	if err != nil {
		return Route{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return Route{}, ErrRouteNotFound
	}
	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return Route{}, ErrRouteNotFound
	}
	return Route{
		DistanceMeters:  elem.Distance.Meters,
		DurationSeconds: int(elem.Duration.Seconds()),
	}, nil
}

func (p *GoogleProvider) Autocomplete(ctx context.Context, input string) ([]string, error) {
	resp, err := p.client.PlaceAutocomplete(ctx, &gmaps.PlaceAutocompleteRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	suggestions := make([]string, 0, len(resp.Predictions))
	for _, pr := range resp.Predictions {
		if pr.Description != "" {
			suggestions = append(suggestions, pr.Description)
		}
	}
	return suggestions, nil
}
