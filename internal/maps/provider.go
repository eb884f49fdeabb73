// README: Mapping provider contract consumed by pricing and dispatch.
package maps

import (
	"context"
	"errors"

	"gocab/internal/types"
)

var (
	// ErrNotFound means the provider returned no result for the query.
	ErrNotFound = errors.New("maps: no result")
	// ErrRouteNotFound means no viable route exists between two addresses.
	ErrRouteNotFound = errors.New("maps: no route found")
	// ErrUnavailable means the provider is unreachable or misconfigured.
	ErrUnavailable = errors.New("maps: provider unavailable")
)

// Route is the travel estimate between two addresses.
type Route struct {
	DistanceMeters  int
	DurationSeconds int
}

// Provider abstracts the external mapping service: geocoding, travel
// estimation, and address autocomplete.
type Provider interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
	DistanceTime(ctx context.Context, origin, destination string) (Route, error)
	Autocomplete(ctx context.Context, input string) ([]string, error)
}
