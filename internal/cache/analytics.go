package cache

import (
	"context"
	"encoding/json"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
)

// DefaultPrefix namespaces analytics entries in the backend.
const DefaultPrefix = "cfdash_results_"

// AnalyticsCache caches analytics results per (range, metric) pair.
type AnalyticsCache struct {
	backend Backend
	prefix  string
}

// NewAnalyticsCache wraps backend using DefaultPrefix.
func NewAnalyticsCache(backend Backend) *AnalyticsCache {
	return &AnalyticsCache{backend: backend, prefix: DefaultPrefix}
}

// WithPrefix returns a copy of the cache using prefix for its keys.
func (c *AnalyticsCache) WithPrefix(prefix string) *AnalyticsCache {
	return &AnalyticsCache{backend: c.backend, prefix: prefix}
}

// Key returns the backend key for a (range, metric) pair, e.g.
// "cfdash_results_-10080_pageviews".
func (c *AnalyticsCache) Key(r domain.TimeRange, m domain.MetricKind) string {
	return c.prefix + r.String() + "_" + string(m)
}

// Get returns the cached result, or false on a miss. Entries that no longer
// decode are dropped and reported as a miss.
func (c *AnalyticsCache) Get(ctx context.Context, r domain.TimeRange, m domain.MetricKind) (*domain.Result, bool, error) {
	key := c.Key(r, m)
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var result domain.Result
	if err := json.Unmarshal(data, &result); err != nil {
		_ = c.backend.Delete(ctx, key)
		return nil, false, nil
	}
	return &result, true, nil
}

// Set stores result for ttl. A ttl of zero means caching is disabled and
// nothing is written.
func (c *AnalyticsCache) Set(ctx context.Context, r domain.TimeRange, m domain.MetricKind, result *domain.Result, ttl time.Duration) error {
	if ttl <= 0 || result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, c.Key(r, m), data, ttl)
}

// Invalidate removes the entry for a (range, metric) pair.
func (c *AnalyticsCache) Invalidate(ctx context.Context, r domain.TimeRange, m domain.MetricKind) error {
	return c.backend.Delete(ctx, c.Key(r, m))
}

// Clear removes every analytics entry.
func (c *AnalyticsCache) Clear(ctx context.Context) error {
	return c.backend.Clear(ctx, c.prefix)
}
