// Package store defines the persistence interfaces consumed by the service
// layer, so concrete backends (PostgreSQL in production, mocks in tests) can
// be swapped without touching business logic.
package store

import (
	"context"
	"errors"

	"github.com/wanderplan/wanderplan-backend/types"
)

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden indicates that the user is not authorized to perform the requested action.
	ErrForbidden = errors.New("forbidden")
)

// TripStore is the persistence boundary for trips.
type TripStore interface {
	// CreateTrip inserts a new trip and returns it with server-assigned
	// id and timestamps.
	CreateTrip(ctx context.Context, trip types.Trip) (*types.Trip, error)

	// GetTrip retrieves a trip by id. Returns ErrNotFound if absent.
	GetTrip(ctx context.Context, id string) (*types.Trip, error)

	// ListTrips returns all trips owned by ownerID, newest first.
	ListTrips(ctx context.Context, ownerID string) ([]*types.Trip, error)

	// UpdateTrip applies the non-nil fields of update and returns the
	// resulting trip. Returns ErrNotFound if absent.
	UpdateTrip(ctx context.Context, id string, update types.TripUpdate) (*types.Trip, error)

	// UpdateTripStatus sets only the status column. Used by the background
	// status reconciliation write.
	UpdateTripStatus(ctx context.Context, id string, status types.TripStatus) error

	// DeleteTrip removes a trip. Returns ErrNotFound if absent.
	DeleteTrip(ctx context.Context, id string) error
}
