package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/store"
	"github.com/wanderplan/wanderplan-backend/types"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it in
// tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Ensure TripStore implements store.TripStore.
var _ store.TripStore = (*TripStore)(nil)

// TripStore implements store.TripStore using PostgreSQL.
type TripStore struct {
	db DB
}

// NewTripStore creates a new PostgreSQL trip store.
func NewTripStore(db DB) *TripStore {
	return &TripStore{db: db}
}

const tripColumns = `id, owner_id, title, description, destination, start_date, end_date, status, latitude, longitude, created_at, updated_at`

func scanTrip(row pgx.Row) (*types.Trip, error) {
	var trip types.Trip
	var description *string
	err := row.Scan(
		&trip.ID,
		&trip.OwnerID,
		&trip.Title,
		&description,
		&trip.Destination,
		&trip.StartDate,
		&trip.EndDate,
		&trip.Status,
		&trip.Latitude,
		&trip.Longitude,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		trip.Description = *description
	}
	return &trip, nil
}

// CreateTrip inserts a new trip row and returns the stored record with the
// server-assigned id and timestamps.
func (s *TripStore) CreateTrip(ctx context.Context, trip types.Trip) (*types.Trip, error) {
	log := logger.GetLogger()

	query := `
		INSERT INTO trips (owner_id, title, description, destination, start_date, end_date, status, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + tripColumns

	var description *string
	if trip.Description != "" {
		description = &trip.Description
	}

	created, err := scanTrip(s.db.QueryRow(ctx, query,
		trip.OwnerID,
		trip.Title,
		description,
		trip.Destination,
		trip.StartDate,
		trip.EndDate,
		string(trip.Status),
		trip.Latitude,
		trip.Longitude,
	))
	if err != nil {
		log.Errorw("Failed to insert trip", "ownerId", trip.OwnerID, "error", err)
		return nil, fmt.Errorf("failed to insert trip: %w", err)
	}

	log.Infow("Trip created", "tripId", created.ID, "ownerId", created.OwnerID)
	return created, nil
}

// GetTrip retrieves a single trip by its ID.
func (s *TripStore) GetTrip(ctx context.Context, id string) (*types.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// ListTrips returns all trips owned by ownerID ordered by creation time,
// newest first.
func (s *TripStore) ListTrips(ctx context.Context, ownerID string) ([]*types.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*types.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

// UpdateTrip applies the non-nil fields of update to the trip row.
func (s *TripStore) UpdateTrip(ctx context.Context, id string, update types.TripUpdate) (*types.Trip, error) {
	log := logger.GetLogger()

	var setFields []string
	var args []interface{}
	argPosition := 1

	appendField := func(column string, value interface{}) {
		setFields = append(setFields, fmt.Sprintf("%s = $%d", column, argPosition))
		args = append(args, value)
		argPosition++
	}

	if update.Title != nil {
		appendField("title", *update.Title)
	}
	if update.Description != nil {
		appendField("description", *update.Description)
	}
	if update.Destination != nil {
		appendField("destination", *update.Destination)
	}
	if update.StartDate != nil {
		appendField("start_date", *update.StartDate)
	}
	if update.EndDate != nil {
		appendField("end_date", *update.EndDate)
	}
	if update.Status != nil {
		appendField("status", string(*update.Status))
	}
	if update.Latitude != nil {
		appendField("latitude", *update.Latitude)
	}
	if update.Longitude != nil {
		appendField("longitude", *update.Longitude)
	}

	if len(args) == 0 {
		return s.GetTrip(ctx, id)
	}

	setFields = append(setFields, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf(`
		UPDATE trips
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(setFields, ", "),
		argPosition,
		tripColumns,
	)
	args = append(args, id)

	trip, err := scanTrip(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Errorw("Failed to update trip", "tripId", id, "error", err)
		return nil, fmt.Errorf("database error updating trip: %w", err)
	}

	log.Infow("Trip updated", "tripId", id)
	return trip, nil
}

// UpdateTripStatus sets only the status column. This is the write half of the
// lazy status reconciliation; callers treat failures as non-fatal.
func (s *TripStore) UpdateTripStatus(ctx context.Context, id string, status types.TripStatus) error {
	query := `UPDATE trips SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	tag, err := s.db.Exec(ctx, query, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteTrip removes a trip row.
func (s *TripStore) DeleteTrip(ctx context.Context, id string) error {
	log := logger.GetLogger()
	query := `DELETE FROM trips WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		log.Errorw("Failed to delete trip", "tripId", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	log.Infow("Trip deleted", "tripId", id)
	return nil
}
