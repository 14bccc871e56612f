package region

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/NERVsystems/tripgomcp/pkg/metrics"
)

// Fetcher loads the full region list from upstream.
type Fetcher interface {
	Regions(ctx context.Context) ([]Region, error)
}

// regionsKey is the single cache key; the region list is one global value.
const regionsKey = "regions"

// fetchTimeout bounds a shared fetch, which outlives any single caller.
const fetchTimeout = time.Minute

// Cache keeps the region list for a fixed TTL in front of a Fetcher.
// A zero TTL disables caching so every call reaches the fetcher.
// Fetch errors are never cached.
type Cache struct {
	fetcher Fetcher
	entries *expirable.LRU[string, []Region]
	group   singleflight.Group
	logger  *slog.Logger
}

// NewCache wraps fetcher with a TTL cache.
func NewCache(fetcher Fetcher, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		fetcher: fetcher,
		logger:  logger,
	}
	if ttl > 0 {
		c.entries = expirable.NewLRU[string, []Region](1, nil, ttl)
	}
	return c
}

// Regions returns the cached region list, fetching it when absent or expired.
// Concurrent misses share one upstream call.
func (c *Cache) Regions(ctx context.Context) ([]Region, error) {
	if c.entries == nil {
		return c.fetcher.Regions(ctx)
	}

	if regions, ok := c.entries.Get(regionsKey); ok {
		metrics.RegionCacheHit()
		return regions, nil
	}
	metrics.RegionCacheMiss()

	// The fetch is detached from ctx so one caller giving up does not fail
	// the others waiting on the same call.
	ch := c.group.DoChan(regionsKey, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		regions, err := c.fetcher.Regions(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.entries.Add(regionsKey, regions)
		return regions, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		regions := res.Val.([]Region)
		c.logger.Debug("region list loaded", "count", len(regions), "shared", res.Shared)
		return regions, nil
	}
}

// Cached returns the region list only if it is already cached. It never
// contacts upstream.
func (c *Cache) Cached() ([]Region, bool) {
	if c.entries == nil {
		return nil, false
	}
	return c.entries.Peek(regionsKey)
}
