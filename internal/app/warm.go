package app

import (
	"context"
	"fmt"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"

	"golang.org/x/sync/errgroup"
)

// ErrCacheDisabled is returned by Warm when cache-time is 0.
var ErrCacheDisabled = fmt.Errorf("caching is disabled (cache-time is 0)")

// Warm fetches every time range concurrently and stores each result under
// all metrics, so the next render of any view is a cache hit. It returns
// the number of entries written.
func (a *App) Warm(ctx context.Context) (int, error) {
	ttl := a.Config.CacheTTL()
	if ttl <= 0 {
		return 0, ErrCacheDisabled
	}

	results := make([]*domain.Result, len(domain.TimeRanges))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range domain.TimeRanges {
		g.Go(func() error {
			res, err := a.Fetcher.Fetch(gctx, r)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Label(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	written := 0
	for i, r := range domain.TimeRanges {
		for _, m := range domain.MetricKinds {
			if err := a.Cache.Set(ctx, r, m, results[i], ttl); err != nil {
				return written, fmt.Errorf("failed to cache %s/%s: %w", r, m, err)
			}
			written++
		}
	}
	a.Logger.WithField("entries", written).Info("analytics cache warmed")
	return written, nil
}
