package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/wanderplan/wanderplan-backend/errors"
	"github.com/wanderplan/wanderplan-backend/internal/search"
	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/pkg/geocoder"
	"github.com/wanderplan/wanderplan-backend/types"
)

// PlaceHandler proxies place search to the configured geocoding provider so
// the provider credential never leaves the server.
type PlaceHandler struct {
	geocoder     geocoder.Client
	defaultLimit int
}

func NewPlaceHandler(geocodeClient geocoder.Client, defaultLimit int) *PlaceHandler {
	if defaultLimit <= 0 {
		defaultLimit = search.DefaultResultLimit
	}
	return &PlaceHandler{geocoder: geocodeClient, defaultLimit: defaultLimit}
}

// SearchPlacesRequest represents the request body for a place search.
type SearchPlacesRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit,omitempty"`
}

// SearchPlacesHandler returns ranked place candidates for a free-text query.
// Queries shorter than the minimum length return an empty result set without
// hitting the provider.
func (h *PlaceHandler) SearchPlacesHandler(c *gin.Context) {
	var req SearchPlacesRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) < search.MinQueryLength {
		c.JSON(http.StatusOK, types.PlaceSearchResponse{Results: []types.PlaceCandidate{}})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > h.defaultLimit {
		limit = h.defaultLimit
	}

	results, err := h.geocoder.Search(c.Request.Context(), query, limit)
	if err != nil {
		logger.GetLogger().Warnw("Place search failed", "query", query, "error", err)
		var lookupErr *geocoder.LookupError
		if errors.As(err, &lookupErr) {
			_ = c.Error(apperrors.GeocodingFailed(err))
			return
		}
		_ = c.Error(apperrors.InternalServerError("Place search failed"))
		return
	}

	if results == nil {
		results = []types.PlaceCandidate{}
	}
	c.JSON(http.StatusOK, types.PlaceSearchResponse{Results: results})
}
