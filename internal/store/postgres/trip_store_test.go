package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderplan/wanderplan-backend/store"
	"github.com/wanderplan/wanderplan-backend/types"
)

func createMockPool(t *testing.T) (pgxmock.PgxPoolIface, func()) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	cleanup := func() {
		mock.Close()
	}
	return mock, cleanup
}

func createTestTrip() types.Trip {
	return types.Trip{
		ID:          uuid.NewString(),
		OwnerID:     uuid.NewString(),
		Title:       "Summer in Rome",
		Description: "Two weeks around Lazio",
		Destination: "Roma, Italia",
		StartDate:   types.NewDate(2024, time.June, 10),
		EndDate:     types.NewDate(2024, time.June, 20),
		Status:      types.TripStatusPlanned,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func tripRows(trip types.Trip) *pgxmock.Rows {
	var description *string
	if trip.Description != "" {
		description = &trip.Description
	}
	return pgxmock.NewRows([]string{
		"id", "owner_id", "title", "description", "destination",
		"start_date", "end_date", "status", "latitude", "longitude",
		"created_at", "updated_at",
	}).AddRow(
		trip.ID, trip.OwnerID, trip.Title, description, trip.Destination,
		trip.StartDate.Time, trip.EndDate.Time, string(trip.Status), trip.Latitude, trip.Longitude,
		trip.CreatedAt, trip.UpdatedAt,
	)
}

func TestTripStore_CreateTrip(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	ctx := context.Background()
	trip := createTestTrip()
	s := NewTripStore(mock)

	t.Run("successful creation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO trips").
			WithArgs(
				trip.OwnerID, trip.Title, &trip.Description, trip.Destination,
				trip.StartDate, trip.EndDate, string(trip.Status),
				trip.Latitude, trip.Longitude,
			).
			WillReturnRows(tripRows(trip))

		created, err := s.CreateTrip(ctx, trip)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, created.ID)
		assert.Equal(t, trip.Title, created.Title)
		assert.Equal(t, trip.Destination, created.Destination)
		assert.Equal(t, "2024-06-10", created.StartDate.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO trips").
			WillReturnError(errors.New("connection refused"))

		_, err := s.CreateTrip(ctx, trip)
		assert.Error(t, err)
	})
}

func TestTripStore_GetTrip(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	ctx := context.Background()
	trip := createTestTrip()
	s := NewTripStore(mock)

	t.Run("successful retrieval", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM trips WHERE id = \\$1").
			WithArgs(trip.ID).
			WillReturnRows(tripRows(trip))

		got, err := s.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, got.ID)
		assert.Equal(t, trip.Description, got.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("trip not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM trips WHERE id = \\$1").
			WithArgs("nonexistent").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		_, err := s.GetTrip(ctx, "nonexistent")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestTripStore_ListTrips(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	ctx := context.Background()
	s := NewTripStore(mock)
	ownerID := uuid.NewString()

	t.Run("returns trips newest first", func(t *testing.T) {
		trip1 := createTestTrip()
		trip1.OwnerID = ownerID
		trip2 := createTestTrip()
		trip2.OwnerID = ownerID

		rows := tripRows(trip1)
		var description2 *string
		if trip2.Description != "" {
			description2 = &trip2.Description
		}
		rows.AddRow(
			trip2.ID, trip2.OwnerID, trip2.Title, description2, trip2.Destination,
			trip2.StartDate.Time, trip2.EndDate.Time, string(trip2.Status), trip2.Latitude, trip2.Longitude,
			trip2.CreatedAt, trip2.UpdatedAt,
		)

		mock.ExpectQuery("SELECT (.+) FROM trips WHERE owner_id = \\$1 ORDER BY created_at DESC").
			WithArgs(ownerID).
			WillReturnRows(rows)

		trips, err := s.ListTrips(ctx, ownerID)
		require.NoError(t, err)
		require.Len(t, trips, 2)
		assert.Equal(t, trip1.ID, trips[0].ID)
		assert.Equal(t, trip2.ID, trips[1].ID)
	})

	t.Run("empty result", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM trips WHERE owner_id = \\$1").
			WithArgs(ownerID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "owner_id", "title", "description", "destination",
				"start_date", "end_date", "status", "latitude", "longitude",
				"created_at", "updated_at",
			}))

		trips, err := s.ListTrips(ctx, ownerID)
		require.NoError(t, err)
		assert.Empty(t, trips)
	})
}

func TestTripStore_UpdateTrip(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	ctx := context.Background()
	trip := createTestTrip()
	s := NewTripStore(mock)

	t.Run("partial update", func(t *testing.T) {
		newTitle := "Autumn in Rome"
		updated := trip
		updated.Title = newTitle

		mock.ExpectQuery("UPDATE trips SET title = \\$1, updated_at = CURRENT_TIMESTAMP WHERE id = \\$2").
			WithArgs(newTitle, trip.ID).
			WillReturnRows(tripRows(updated))

		got, err := s.UpdateTrip(ctx, trip.ID, types.TripUpdate{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, newTitle, got.Title)
	})

	t.Run("no fields falls back to get", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM trips WHERE id = \\$1").
			WithArgs(trip.ID).
			WillReturnRows(tripRows(trip))

		got, err := s.UpdateTrip(ctx, trip.ID, types.TripUpdate{})
		require.NoError(t, err)
		assert.Equal(t, trip.ID, got.ID)
	})

	t.Run("trip not found", func(t *testing.T) {
		newTitle := "does not matter"
		mock.ExpectQuery("UPDATE trips SET").
			WithArgs(newTitle, "nonexistent").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		_, err := s.UpdateTrip(ctx, "nonexistent", types.TripUpdate{Title: &newTitle})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestTripStore_UpdateTripStatus(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	ctx := context.Background()
	trip := createTestTrip()
	s := NewTripStore(mock)

	t.Run("successful status write", func(t *testing.T) {
		mock.ExpectExec("UPDATE trips SET status = \\$1").
			WithArgs(string(types.TripStatusCompleted), trip.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := s.UpdateTripStatus(ctx, trip.ID, types.TripStatusCompleted)
		assert.NoError(t, err)
	})

	t.Run("trip not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE trips SET status = \\$1").
			WithArgs(string(types.TripStatusCompleted), "nonexistent").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := s.UpdateTripStatus(ctx, "nonexistent", types.TripStatusCompleted)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestTripStore_DeleteTrip(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	ctx := context.Background()
	trip := createTestTrip()
	s := NewTripStore(mock)

	t.Run("successful deletion", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM trips WHERE id = \\$1").
			WithArgs(trip.ID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, s.DeleteTrip(ctx, trip.ID))
	})

	t.Run("trip not found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM trips WHERE id = \\$1").
			WithArgs("nonexistent").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, s.DeleteTrip(ctx, "nonexistent"), store.ErrNotFound)
	})
}
