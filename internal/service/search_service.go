package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/singleflight"

	"spotfetch/internal/cache"
	dom "spotfetch/internal/domain"
)

const searchLimit = 10

var ErrMissingQuery = errors.New("query parameter q is required")

// TrackSearcher searches the external music catalog.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]dom.Track, error)
}

// SearchService proxies catalog search, collapsing concurrent identical
// queries and caching recent results.
type SearchService struct {
	catalog TrackSearcher
	cache   *cache.SearchCache
	sf      singleflight.Group
}

// NewSearchService creates a SearchService. If c is nil, caching is disabled.
func NewSearchService(catalog TrackSearcher, c *cache.SearchCache) *SearchService {
	return &SearchService{catalog: catalog, cache: c}
}

// Search returns up to 10 catalog hits for q.
func (s *SearchService) Search(ctx context.Context, q string) ([]dom.Track, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrMissingQuery
	}
	if s.cache != nil {
		key := strings.ToLower(q)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.Get(ctx, q); err == nil && list != nil {
				return list, nil
			}
			list, err := s.catalog.SearchTracks(ctx, q, searchLimit)
			if err != nil {
				return nil, err
			}
			_ = s.cache.Set(ctx, q, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Track), nil
	}
	return s.catalog.SearchTracks(ctx, q, searchLimit)
}
