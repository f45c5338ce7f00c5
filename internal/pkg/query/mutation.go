package query

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/ach-dashboard/internal/app/observability/metrics"
)

// Mutation describes a write and how it reshapes the cache.
type Mutation[V, R any] struct {
	Name string
	// Affects are the prefixes snapshotted before the optimistic write.
	Affects []Key
	// Optimistic applies the expected outcome before the backend answers.
	Optimistic func(tx *Tx, vars V)
	Fn         func(ctx context.Context, vars V) (R, error)
	// OnSuccess writes the authoritative result into the cache.
	OnSuccess func(tx *Tx, vars V, res R)
}

// Mutate runs m: snapshot, optimistic write, backend call with write retries, then either the
// authoritative write and commit or a verbatim rollback. Dependent entries are invalidated in
// both cases.
func Mutate[V, R any](ctx context.Context, c *Client, m Mutation[V, R], vars V) (R, error) {
	tx := c.Begin(m.Affects...)
	defer tx.Settle()

	if m.Optimistic != nil {
		m.Optimistic(tx, vars)
	}

	res, err := retryWrite(ctx, c, func(ctx context.Context) (R, error) {
		return m.Fn(ctx, vars)
	})
	outcome := "success"
	if err != nil {
		outcome = "rollback"
		tx.Rollback()
	} else {
		if m.OnSuccess != nil {
			m.OnSuccess(tx, vars, res)
		}
		_ = tx.Commit()
	}
	metrics.Get().MutationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mutation", m.Name),
		attribute.String("outcome", outcome),
	))
	return res, err
}
