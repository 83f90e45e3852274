package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wanderplan/wanderplan-backend/errors"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_ValidationError(t *testing.T) {
	w := performWithError(t, apperrors.ValidationFailed("invalid trip", "title is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, string(apperrors.ValidationError), body["type"])
	assert.Equal(t, "title is required", body["details"])
}

func TestErrorHandler_TripNotFound(t *testing.T) {
	w := performWithError(t, apperrors.TripNotFoundError("trip-9"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, string(apperrors.TripNotFound), body["type"])
}

func TestErrorHandler_GeocodingError(t *testing.T) {
	w := performWithError(t, apperrors.GeocodingFailed(assert.AnError))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, string(apperrors.GeocodingError), body["type"])
	// Internal failure details stay out of the response.
	assert.NotContains(t, body, "details")
}

func TestErrorHandler_UnknownError(t *testing.T) {
	w := performWithError(t, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, string(apperrors.ServerError), body["type"])
	assert.Equal(t, "An unexpected error occurred", body["message"])
}

func TestErrorHandler_NoErrorPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
}
