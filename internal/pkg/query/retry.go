package query

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/observability/metrics"
)

// RetryPolicy is the exponential backoff applied to backend calls. Tries count the first attempt,
// so ReadTries 4 means three retries.
type RetryPolicy struct {
	ReadTries  uint
	WriteTries uint
	Initial    time.Duration
	Max        time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		ReadTries:  4,
		WriteTries: 3,
		Initial:    time.Second,
		Max:        30 * time.Second,
	}
}

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

func statusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

// retryableRead: 401, 403 and 404 are final, everything else may succeed on a later attempt.
func retryableRead(err error) bool {
	switch statusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return true
}

// retryableWrite: no 4xx is retried.
func retryableWrite(err error) bool {
	s := statusOf(err)
	return s < 400 || s >= 500
}

func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxInterval = p.Max
	b.Multiplier = 2
	b.RandomizationFactor = 0
	return b
}

func run[T any](ctx context.Context, c *Client, kind string, tries uint, retryable func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	var op backoff.Operation[T] = func() (T, error) {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		metrics.Get().BackendRetriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		c.logger.Debug("Retrying backend call", zap.String("kind", kind), zap.Duration("wait", wait), zap.Error(err))
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(c.retry.backOff()),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(notify),
	)
}

func retryRead[T any](ctx context.Context, c *Client, fn func(context.Context) (T, error)) (T, error) {
	return run(ctx, c, "read", c.retry.ReadTries, retryableRead, fn)
}

func retryWrite[T any](ctx context.Context, c *Client, fn func(context.Context) (T, error)) (T, error) {
	return run(ctx, c, "write", c.retry.WriteTries, retryableWrite, fn)
}
