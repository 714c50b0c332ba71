package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/rotaguia/rotaguia/internal/api/middleware"

// Metrics holds the OpenTelemetry metrics instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with initialized instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests_in_flight",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("Size of HTTP server responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware returns an HTTP middleware that records metrics for each request.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
			}
			m.requestsInFlight.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			defer m.requestsInFlight.Add(r.Context(), -1, metric.WithAttributes(attrs...))

			wrapped := newMetricsResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()

			attrs = append(attrs, attribute.String("http.status_code", strconv.Itoa(wrapped.statusCode)))
			if wrapped.statusCode >= 400 {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			m.requestDuration.Record(r.Context(), duration, metric.WithAttributes(attrs...))
			m.requestTotal.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			m.responseSize.Record(r.Context(), wrapped.written, metric.WithAttributes(attrs...))
		})
	}
}

// metricsResponseWriter wraps http.ResponseWriter to capture response metadata.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// GeocodeMetrics holds metrics for reverse geocoding calls.
type GeocodeMetrics struct {
	lookupDuration metric.Float64Histogram
	lookupTotal    metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
}

// NewGeocodeMetrics creates metrics for monitoring reverse geocoding.
func NewGeocodeMetrics() (*GeocodeMetrics, error) {
	meter := otel.Meter(meterName)

	lookupDuration, err := meter.Float64Histogram(
		"geocode.lookup.duration",
		metric.WithDescription("Duration of reverse geocode lookups in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	lookupTotal, err := meter.Int64Counter(
		"geocode.lookup.total",
		metric.WithDescription("Total number of reverse geocode lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"geocode.cache.hit",
		metric.WithDescription("Number of address cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"geocode.cache.miss",
		metric.WithDescription("Number of address cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &GeocodeMetrics{
		lookupDuration: lookupDuration,
		lookupTotal:    lookupTotal,
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
	}, nil
}

// RecordLookup records a reverse geocode lookup.
func (m *GeocodeMetrics) RecordLookup(provider string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Background context so a cancelled request does not drop the sample
	ctx := context.Background()
	m.lookupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.lookupTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheHit records an address cache hit.
func (m *GeocodeMetrics) RecordCacheHit(provider string) {
	m.cacheHits.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("provider.name", provider),
	))
}

// RecordCacheMiss records an address cache miss.
func (m *GeocodeMetrics) RecordCacheMiss(provider string) {
	m.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("provider.name", provider),
	))
}
