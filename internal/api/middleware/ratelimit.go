package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/rotaguia/rotaguia/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Requests per window
	RequestLimit int
	// Window duration
	WindowLength time.Duration
}

// Default rate limit configurations.
var (
	// RegisterRateLimit applies to device registration (10 req/min).
	RegisterRateLimit = RateLimitConfig{
		RequestLimit: 10,
		WindowLength: time.Minute,
	}

	// GeocodeRateLimit applies to direct reverse-geocode calls (30 req/min).
	// The upstream geocoder allows one request per second, so this keeps a
	// single client from monopolizing the budget.
	GeocodeRateLimit = RateLimitConfig{
		RequestLimit: 30,
		WindowLength: time.Minute,
	}

	// TrackRateLimit applies to fix submission (240 req/min). Devices report
	// at most a few times per second during active tracking.
	TrackRateLimit = RateLimitConfig{
		RequestLimit: 240,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to read endpoints (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP creates a rate limiter middleware using client IP address.
// Uses X-Forwarded-For header if present (extracted by chi's RealIP middleware).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// RateLimitByDevice creates a rate limiter middleware keyed on the
// authenticated device ID. Falls back to IP for unauthenticated requests.
func RateLimitByDevice(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByDeviceOrIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// keyByDeviceOrIP returns the device ID if authenticated, otherwise the client IP.
func keyByDeviceOrIP(r *http.Request) (string, error) {
	if deviceID := GetDeviceID(r.Context()); deviceID != "" {
		return "device:" + deviceID, nil
	}
	return httprate.KeyByRealIP(r)
}

// rateLimitExceededHandler writes an RFC7807 Problem response when rate limit is exceeded.
func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	traceID := GetRequestID(r.Context())

	problem := models.NewTooManyRequests(traceID, "Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	// httprate does not expose the exact reset time, use a conservative estimate
	w.Header().Set("Retry-After", strconv.Itoa(60))

	problem.Write(w)
}
