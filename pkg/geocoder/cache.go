package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/types"
)

const cacheKeyPrefix = "geocode:"

// CachedClient is a read-through Redis cache over another geocoding client.
// Cache failures degrade to direct lookups and are never surfaced to callers.
type CachedClient struct {
	inner Client
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedClient(inner Client, redisClient *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{
		inner: inner,
		redis: redisClient,
		ttl:   ttl,
	}
}

func (c *CachedClient) Search(ctx context.Context, query string, limit int) ([]types.PlaceCandidate, error) {
	log := logger.GetLogger()
	key := cacheKey(query, limit)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var results []types.PlaceCandidate
		if unmarshalErr := json.Unmarshal([]byte(cached), &results); unmarshalErr == nil {
			log.Debugw("Geocode cache hit", "key", key, "results", len(results))
			return results, nil
		}
		log.Warnw("Discarding unreadable geocode cache entry", "key", key)
	} else if err != redis.Nil {
		log.Warnw("Geocode cache read failed", "key", key, "error", err)
	}

	results, err := c.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(results)
	if err != nil {
		log.Errorw("Failed to marshal geocode results for cache", "key", key, "error", err)
		return results, nil
	}
	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Warnw("Geocode cache write failed", "key", key, "error", err)
	}
	return results, nil
}

func cacheKey(query string, limit int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%s%d:%s", cacheKeyPrefix, limit, normalized)
}
