package metrics

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/pkg/logger"
)

const meterName = "ach-dashboard"

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	CacheHitsTotal      metric.Int64Counter
	CacheMissesTotal    metric.Int64Counter
	BackendFetchesTotal metric.Int64Counter
	BackendFetchErrors  metric.Int64Counter
	BackendRetriesTotal metric.Int64Counter
	MutationsTotal      metric.Int64Counter
	MutationRollbacks   metric.Int64Counter
	InvalidationsTotal  metric.Int64Counter

	ProxyRequestsTotal  metric.Int64Counter
	ProxyRequestLatency metric.Float64Histogram

	AuthRequestsTotal metric.Int64Counter
	ActiveWorkspaces  metric.Int64UpDownCounter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider. It runs once; call it after
// the provider is installed so the instruments are exported.
func InitAppMetrics() {
	once.Do(func() {
		appMetrics = build(otel.GetMeterProvider().Meter(meterName))
		logger.L().Info("Application metrics instruments initialized")
	})
}

// Get returns the instruments, creating them from the global provider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func build(meter metric.Meter) *AppMetrics {
	fallback := noop.NewMeterProvider().Meter(meterName)
	m := &AppMetrics{}

	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			logger.L().Error("Metrics: failed to create counter", zap.String("name", name), zap.Error(err))
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		if err != nil {
			logger.L().Error("Metrics: failed to create histogram", zap.String("name", name), zap.Error(err))
			h, _ = fallback.Float64Histogram(name)
		}
		return h
	}

	m.HTTPRequestsTotal = counter("http_requests_total", "Total number of HTTP requests completed", "{request}")
	m.HTTPRequestDuration = histogram("http_request_duration_seconds", "Duration of HTTP requests in seconds")

	m.CacheHitsTotal = counter("query_cache_hits_total", "Reads served from a fresh cache entry", "{read}")
	m.CacheMissesTotal = counter("query_cache_misses_total", "Reads that needed a backend fetch", "{read}")
	m.BackendFetchesTotal = counter("query_backend_fetches_total", "Backend fetches issued by the query cache", "{request}")
	m.BackendFetchErrors = counter("query_backend_fetch_errors_total", "Backend fetches that failed after retries", "{error}")
	m.BackendRetriesTotal = counter("query_backend_retries_total", "Backend attempts retried after a failure", "{retry}")
	m.MutationsTotal = counter("query_mutations_total", "Mutations run through the optimistic protocol", "{mutation}")
	m.MutationRollbacks = counter("query_mutation_rollbacks_total", "Mutations rolled back after a backend failure", "{mutation}")
	m.InvalidationsTotal = counter("query_invalidations_total", "Cache entries marked stale", "{entry}")

	m.ProxyRequestsTotal = counter("proxy_requests_total", "Requests forwarded by the API proxy", "{request}")
	m.ProxyRequestLatency = histogram("proxy_request_duration_seconds", "Backend round trip of proxied requests in seconds")

	m.AuthRequestsTotal = counter("auth_requests_total", "Total number of authentication requests", "{request}")

	gauge, err := meter.Int64UpDownCounter("active_workspaces", metric.WithDescription("Browser sessions with a live workspace"), metric.WithUnit("{session}"))
	if err != nil {
		logger.L().Error("Metrics: failed to create active_workspaces", zap.Error(err))
		gauge, _ = fallback.Int64UpDownCounter("active_workspaces")
	}
	m.ActiveWorkspaces = gauge

	return m
}
