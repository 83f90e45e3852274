package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/wanderplan-backend/types"
)

type stubClient struct {
	results []types.PlaceCandidate
	err     error
	calls   int
}

func (s *stubClient) Search(ctx context.Context, query string, limit int) ([]types.PlaceCandidate, error) {
	s.calls++
	return s.results, s.err
}

func samplePlaces() []types.PlaceCandidate {
	return []types.PlaceCandidate{
		{ID: "place.1", Name: "Lisbon", Address: "Lisbon, Portugal", Latitude: 38.7223, Longitude: -9.1393, Type: "place"},
	}
}

func TestCachedClient_Miss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubClient{results: samplePlaces()}
	cached := NewCachedClient(inner, rdb, 5*time.Minute)

	key := cacheKey("Lisbon", 5)
	payload, err := json.Marshal(samplePlaces())
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, payload, 5*time.Minute).SetVal("OK")

	results, err := cached.Search(context.Background(), "Lisbon", 5)
	require.NoError(t, err)
	assert.Equal(t, samplePlaces(), results)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedClient_Hit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubClient{results: samplePlaces()}
	cached := NewCachedClient(inner, rdb, 5*time.Minute)

	payload, err := json.Marshal(samplePlaces())
	require.NoError(t, err)
	mock.ExpectGet(cacheKey("Lisbon", 5)).SetVal(string(payload))

	results, err := cached.Search(context.Background(), "Lisbon", 5)
	require.NoError(t, err)
	assert.Equal(t, samplePlaces(), results)
	assert.Zero(t, inner.calls, "cache hit must not reach the provider")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedClient_KeyNormalization(t *testing.T) {
	assert.Equal(t, cacheKey("  Lisbon ", 5), cacheKey("lisbon", 5))
	assert.NotEqual(t, cacheKey("lisbon", 5), cacheKey("lisbon", 1))
}

func TestCachedClient_RedisFailureFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubClient{results: samplePlaces()}
	cached := NewCachedClient(inner, rdb, 5*time.Minute)

	mock.ExpectGet(cacheKey("Lisbon", 5)).SetErr(errors.New("connection refused"))

	results, err := cached.Search(context.Background(), "Lisbon", 5)
	require.NoError(t, err)
	assert.Equal(t, samplePlaces(), results)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedClient_ProviderErrorNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	lookupErr := &LookupError{Provider: "mapbox", Message: "boom"}
	inner := &stubClient{err: lookupErr}
	cached := NewCachedClient(inner, rdb, 5*time.Minute)

	mock.ExpectGet(cacheKey("Lisbon", 5)).RedisNil()

	results, err := cached.Search(context.Background(), "Lisbon", 5)
	require.Error(t, err)
	assert.Nil(t, results)

	var le *LookupError
	assert.True(t, errors.As(err, &le))
	assert.NoError(t, mock.ExpectationsWereMet())
}
