// Package geocoder provides forward-geocoding clients for place search.
// The provider credential is injected server-side so mobile clients never
// see it.
package geocoder

import (
	"context"
	"fmt"

	"github.com/wanderplan/wanderplan-backend/types"
)

// Client is the interface for place lookup providers.
type Client interface {
	// Search returns up to limit ranked place candidates for the query.
	// Failures are reported as *LookupError.
	Search(ctx context.Context, query string, limit int) ([]types.PlaceCandidate, error)
}

// LookupError is returned when a remote geocoding lookup fails. Message is
// safe to surface to users.
type LookupError struct {
	Provider string
	Message  string
	Err      error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s lookup failed: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s lookup failed: %s", e.Provider, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// CoordinatesFor resolves a free-text place name to the coordinates of its
// best-ranked candidate. Returns nil if the provider finds nothing.
func CoordinatesFor(ctx context.Context, c Client, placeName string) (*types.Coordinates, error) {
	results, err := c.Search(ctx, placeName, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &types.Coordinates{
		Latitude:  results[0].Latitude,
		Longitude: results[0].Longitude,
	}, nil
}
