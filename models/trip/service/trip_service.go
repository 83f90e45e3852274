// Package service implements trip business logic on top of the trip store:
// input validation, ownership checks and lazy status reconciliation.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	apperrors "github.com/wanderplan/wanderplan-backend/errors"
	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/pkg/geocoder"
	"github.com/wanderplan/wanderplan-backend/store"
	"github.com/wanderplan/wanderplan-backend/types"
)

// statusWriteTimeout bounds the background write that persists a reconciled
// trip status.
const statusWriteTimeout = 5 * time.Second

// TripService handles core trip operations.
type TripService struct {
	store    store.TripStore
	geocoder geocoder.Client

	// today is swappable so tests can pin the classification date.
	today func() types.Date

	// bg tracks background status writes so tests and shutdown can wait
	// for them.
	bg sync.WaitGroup
}

// NewTripService creates a new trip service. The geocoding client may be nil,
// in which case destination coordinates are stored only when supplied by the
// caller.
func NewTripService(tripStore store.TripStore, geocodeClient geocoder.Client) *TripService {
	return &TripService{
		store:    tripStore,
		geocoder: geocodeClient,
		today:    types.Today,
	}
}

// CreateTrip validates and persists a new trip owned by userID. The status is
// derived from the trip dates, never taken from the caller.
func (s *TripService) CreateTrip(ctx context.Context, userID string, trip *types.Trip) (*types.Trip, error) {
	if err := validateTripFields(trip.Title, trip.Destination, trip.StartDate, trip.EndDate); err != nil {
		return nil, err
	}

	trip.OwnerID = userID
	trip.Title = strings.TrimSpace(trip.Title)
	trip.Destination = strings.TrimSpace(trip.Destination)
	trip.Status = types.ClassifyStatus(trip.StartDate, trip.EndDate, s.today())

	if trip.Latitude == nil && trip.Longitude == nil {
		s.resolveCoordinates(ctx, trip)
	}

	created, err := s.store.CreateTrip(ctx, *trip)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	logger.GetLogger().Infow("Trip created", "tripID", created.ID, "userID", userID)
	return created, nil
}

// GetTrip returns a single trip after an ownership check. The returned status
// is always the one derived from the trip dates; a stale stored status is
// repaired in the background.
func (s *TripService) GetTrip(ctx context.Context, id string, userID string) (*types.Trip, error) {
	trip, err := s.store.GetTrip(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, id)
	}
	if trip.OwnerID != userID {
		return nil, apperrors.Forbidden("access_denied", "trip belongs to another user")
	}
	return s.reconcileStatus(trip), nil
}

// ListTrips returns the user's trips, newest first, with reconciled statuses.
func (s *TripService) ListTrips(ctx context.Context, userID string) ([]*types.Trip, error) {
	trips, err := s.store.ListTrips(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	for i, trip := range trips {
		trips[i] = s.reconcileStatus(trip)
	}
	return trips, nil
}

// UpdateTrip applies a partial update after an ownership check. When the
// dates change, the status is re-derived from the effective date range.
func (s *TripService) UpdateTrip(ctx context.Context, id string, userID string, update types.TripUpdate) (*types.Trip, error) {
	existing, err := s.store.GetTrip(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, id)
	}
	if existing.OwnerID != userID {
		return nil, apperrors.Forbidden("access_denied", "trip belongs to another user")
	}

	title := existing.Title
	if update.Title != nil {
		title = *update.Title
	}
	destination := existing.Destination
	if update.Destination != nil {
		destination = *update.Destination
	}
	start := existing.StartDate
	if update.StartDate != nil {
		start = *update.StartDate
	}
	end := existing.EndDate
	if update.EndDate != nil {
		end = *update.EndDate
	}
	if err := validateTripFields(title, destination, start, end); err != nil {
		return nil, err
	}

	if update.StartDate != nil || update.EndDate != nil {
		status := types.ClassifyStatus(start, end, s.today())
		update.Status = &status
	}

	if update.Destination != nil && update.Latitude == nil && update.Longitude == nil {
		if coords := s.lookupCoordinates(ctx, destination); coords != nil {
			update.Latitude = &coords.Latitude
			update.Longitude = &coords.Longitude
		}
	}

	updated, err := s.store.UpdateTrip(ctx, id, update)
	if err != nil {
		return nil, translateStoreError(err, id)
	}
	logger.GetLogger().Infow("Trip updated", "tripID", id, "userID", userID)
	return s.reconcileStatus(updated), nil
}

// DeleteTrip removes a trip after an ownership check.
func (s *TripService) DeleteTrip(ctx context.Context, id string, userID string) error {
	existing, err := s.store.GetTrip(ctx, id)
	if err != nil {
		return translateStoreError(err, id)
	}
	if existing.OwnerID != userID {
		return apperrors.Forbidden("access_denied", "trip belongs to another user")
	}
	if err := s.store.DeleteTrip(ctx, id); err != nil {
		return translateStoreError(err, id)
	}
	logger.GetLogger().Infow("Trip deleted", "tripID", id, "userID", userID)
	return nil
}

// Wait blocks until all background status writes have finished. Called during
// shutdown so in-flight repairs are not dropped.
func (s *TripService) Wait() {
	s.bg.Wait()
}

// reconcileStatus overwrites the stored status with the one derived from the
// trip dates. When they disagree, a single background write repairs the
// stored row; its failure is logged and never surfaced.
func (s *TripService) reconcileStatus(trip *types.Trip) *types.Trip {
	computed := types.ClassifyStatus(trip.StartDate, trip.EndDate, s.today())
	if computed == trip.Status {
		return trip
	}

	trip.Status = computed
	tripID := trip.ID

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
		defer cancel()
		if err := s.store.UpdateTripStatus(ctx, tripID, computed); err != nil {
			logger.GetLogger().Warnw("Failed to persist reconciled trip status",
				"tripID", tripID, "status", computed, "error", err)
		}
	}()
	return trip
}

func (s *TripService) resolveCoordinates(ctx context.Context, trip *types.Trip) {
	if coords := s.lookupCoordinates(ctx, trip.Destination); coords != nil {
		trip.Latitude = &coords.Latitude
		trip.Longitude = &coords.Longitude
	}
}

// lookupCoordinates resolves a destination name best-effort. Geocoding
// failures never block trip writes.
func (s *TripService) lookupCoordinates(ctx context.Context, destination string) *types.Coordinates {
	if s.geocoder == nil || strings.TrimSpace(destination) == "" {
		return nil
	}
	coords, err := geocoder.CoordinatesFor(ctx, s.geocoder, destination)
	if err != nil {
		logger.GetLogger().Warnw("Failed to geocode trip destination",
			"destination", destination, "error", err)
		return nil
	}
	return coords
}

func validateTripFields(title, destination string, start, end types.Date) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.ValidationFailed("invalid trip", "title is required")
	}
	if strings.TrimSpace(destination) == "" {
		return apperrors.ValidationFailed("invalid trip", "destination is required")
	}
	if start.IsZero() || end.IsZero() {
		return apperrors.ValidationFailed("invalid trip", "start and end dates are required")
	}
	if end.Before(start) {
		return apperrors.ValidationFailed("invalid trip", "end date cannot be before start date")
	}
	return nil
}

func translateStoreError(err error, tripID string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.TripNotFoundError(tripID)
	case errors.Is(err, store.ErrForbidden):
		return apperrors.Forbidden("access_denied", "trip belongs to another user")
	default:
		return apperrors.NewDatabaseError(err)
	}
}
