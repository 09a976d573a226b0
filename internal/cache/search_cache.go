package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"spotfetch/internal/domain"
)

const keySearch = "catalog:search:"

// SearchCache keeps recent catalog search results in Redis so repeated
// queries do not hit the Spotify API quota. Downloads are never cached.
type SearchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSearchCache returns a new SearchCache.
func NewSearchCache(rdb *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached result for query q, or nil on miss.
func (c *SearchCache) Get(ctx context.Context, q string) ([]domain.Track, error) {
	b, err := c.rdb.Get(ctx, keySearch+normalizeQuery(q)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []domain.Track
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Set stores the search result for query q.
func (c *SearchCache) Set(ctx context.Context, q string, list []domain.Track) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keySearch+normalizeQuery(q), b, c.ttl).Err()
}

func normalizeQuery(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
