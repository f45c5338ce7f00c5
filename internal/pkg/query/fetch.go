package query

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/observability/metrics"
)

// Query describes one cached read.
type Query[T any] struct {
	Key Key
	Fn  func(ctx context.Context) (T, error)
	// Tier overrides the key's default staleness tier when set.
	Tier Tier
}

func (q Query[T]) tier() Tier {
	if q.Tier.Stale > 0 {
		return q.Tier
	}
	return TierFor(q.Key)
}

// Fetch returns the value of q. A fresh entry is returned without a backend call. An entry that
// aged past its tier is returned as is while a refresh runs in the background. A missing or
// invalidated entry is fetched before returning. Concurrent fetches of one key share a single
// backend call.
func Fetch[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	family := attribute.String("family", q.Key.Family())
	if e, ok := c.lookup(q.Key); ok {
		if v, typed := e.data.(T); typed {
			switch {
			case !c.isStale(e):
				metrics.Get().CacheHitsTotal.Add(ctx, 1, metric.WithAttributes(family))
				return v, nil
			case !e.invalidated:
				metrics.Get().CacheHitsTotal.Add(ctx, 1, metric.WithAttributes(family))
				go c.refresh(context.WithoutCancel(ctx), q.Key.String(), func(ctx context.Context) error {
					_, err := load(ctx, c, q)
					return err
				})
				return v, nil
			}
		}
	}
	metrics.Get().CacheMissesTotal.Add(ctx, 1, metric.WithAttributes(family))
	return load(ctx, c, q)
}

// Refetch fetches q from the backend regardless of the cached entry's age.
func Refetch[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	return load(ctx, c, q)
}

// load runs the backend call through singleflight and stores the result. A result that arrives
// after a newer write still overwrites it.
func load[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	var zero T
	key := q.Key.String()
	v, err, _ := c.flight.Do(key, func() (any, error) {
		metrics.Get().BackendFetchesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("family", q.Key.Family())))
		res, err := retryRead(ctx, c, q.Fn)
		if err != nil {
			metrics.Get().BackendFetchErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("family", q.Key.Family())))
			return nil, err
		}
		c.store(q.Key, q.tier(), res)
		return res, nil
	})
	if err != nil || v == nil {
		return zero, err
	}
	res, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: cached value has type %T", key, v)
	}
	return res, nil
}

func (c *Client) refresh(ctx context.Context, key string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		c.logger.Warn("Background refresh failed", zap.String("key", key), zap.Error(err))
	}
}
