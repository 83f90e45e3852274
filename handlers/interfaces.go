package handlers

import (
	"context"

	"github.com/wanderplan/wanderplan-backend/types"
)

// TripServiceInterface defines the trip operations handlers depend on.
type TripServiceInterface interface {
	CreateTrip(ctx context.Context, userID string, trip *types.Trip) (*types.Trip, error)
	GetTrip(ctx context.Context, id string, userID string) (*types.Trip, error)
	ListTrips(ctx context.Context, userID string) ([]*types.Trip, error)
	UpdateTrip(ctx context.Context, id string, userID string, update types.TripUpdate) (*types.Trip, error)
	DeleteTrip(ctx context.Context, id string, userID string) error
}
