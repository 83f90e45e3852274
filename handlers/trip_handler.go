package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/wanderplan/wanderplan-backend/errors"
	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/middleware"
	"github.com/wanderplan/wanderplan-backend/types"
)

// TripHandler handles HTTP requests related to trips.
type TripHandler struct {
	tripService TripServiceInterface
}

// NewTripHandler creates a new TripHandler with the given dependencies.
func NewTripHandler(tripService TripServiceInterface) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest represents the request body for creating a trip.
type CreateTripRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description,omitempty"`
	Destination string     `json:"destination" binding:"required"`
	StartDate   types.Date `json:"startDate"`
	EndDate     types.Date `json:"endDate"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
}

// CreateTripHandler creates a new trip owned by the authenticated user.
func (h *TripHandler) CreateTripHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req CreateTripRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		log.Errorw("No user ID found in context for CreateTripHandler")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated user"})
		return
	}

	tripToCreate := types.Trip{
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}

	createdTrip, err := h.tripService.CreateTrip(c.Request.Context(), userID, &tripToCreate)
	if err != nil {
		log.Debugw("Failed to create trip", "error", err, "userID", userID)
		_ = c.Error(err)
		return
	}

	log.Infow("Successfully created trip", "tripID", createdTrip.ID)
	c.JSON(http.StatusCreated, createdTrip)
}

// GetTripHandler retrieves a single trip by ID.
func (h *TripHandler) GetTripHandler(c *gin.Context) {
	userID := getUserIDFromContext(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated user"})
		return
	}

	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// ListTripsHandler returns all trips owned by the authenticated user,
// newest first.
func (h *TripHandler) ListTripsHandler(c *gin.Context) {
	userID := getUserIDFromContext(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated user"})
		return
	}

	trips, err := h.tripService.ListTrips(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if trips == nil {
		trips = []*types.Trip{}
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// UpdateTripHandler applies a partial update to a trip.
func (h *TripHandler) UpdateTripHandler(c *gin.Context) {
	userID := getUserIDFromContext(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated user"})
		return
	}

	var update types.TripUpdate
	if !bindJSONOrError(c, &update) {
		return
	}
	// The status column is derived from the trip dates, never set directly.
	update.Status = nil

	trip, err := h.tripService.UpdateTrip(c.Request.Context(), c.Param("id"), userID, update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// DeleteTripHandler removes a trip.
func (h *TripHandler) DeleteTripHandler(c *gin.Context) {
	userID := getUserIDFromContext(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated user"})
		return
	}

	if err := h.tripService.DeleteTrip(c.Request.Context(), c.Param("id"), userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getUserIDFromContext extracts the authenticated user ID from the Gin context.
// Returns empty string if not found (caller should handle unauthorized response).
func getUserIDFromContext(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}
