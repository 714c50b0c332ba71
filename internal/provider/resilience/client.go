// Package resilience wraps outbound HTTP calls to external providers with a
// circuit breaker, retry with exponential backoff, and an optional
// client-side rate limit.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Resilience errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker refuses the call.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the client in circuit breaker state and ops output.
	Name string

	// Timeout is the per-call HTTP timeout (default 10s).
	Timeout time.Duration

	// MaxRetries is the number of retry attempts on transient failure
	// (default 3).
	MaxRetries uint64

	// InitialInterval is the first retry backoff interval (default 100ms).
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff (default 5s).
	MaxInterval time.Duration

	// RatePerSecond throttles outbound calls when > 0. Nominatim's usage
	// policy allows at most one request per second.
	RatePerSecond float64

	// BreakerTimeout is how long the circuit stays open before probing
	// (default 60s).
	BreakerTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults for a named provider.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		BreakerTimeout:  60 * time.Second,
	}
}

// Client is an HTTP client with circuit breaker, retry and rate limiting.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	limiter    *rate.Limiter
	config     ClientConfig
}

// NewClient creates a resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.5
		},
	})

	return &Client{
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		limiter:    limiter,
		config:     cfg,
	}
}

// Name returns the client's provider name.
func (c *Client) Name() string { return c.name }

// Do executes the request with rate limiting, circuit breaker protection and
// exponential-backoff retries on network errors and 5xx responses. The
// caller is responsible for closing the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			// 5xx counts as a failure so the breaker can trip.
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		// A 5xx that exhausted retries still carries a usable response.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	return lastResp, nil
}

// State returns the current circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the circuit breaker counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

// Healthy reports whether the circuit is closed.
func (c *Client) Healthy() bool {
	return c.breaker.State() == gobreaker.StateClosed
}

// ServerError represents an HTTP 5xx response treated as a failure.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// WaitForLimit blocks until the rate limiter admits one call. Exposed for
// callers that batch work outside Do.
func (c *Client) WaitForLimit(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
