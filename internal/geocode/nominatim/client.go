// Package nominatim implements the geocode.Provider interface against the
// OpenStreetMap Nominatim reverse geocoding API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/geocode"
	"github.com/rotaguia/rotaguia/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// defaultUserAgent identifies the service per Nominatim's usage policy.
	defaultUserAgent = "rotaguia/1.0"

	// reverseZoom requests building-level detail.
	reverseZoom = 18
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL overrides the API base URL (tests, self-hosted instances).
	BaseURL string

	// UserAgent identifies the caller. Nominatim requires a real one.
	UserAgent string

	// HTTPClient is the resilient client to use. If nil, a default client
	// rate-limited to 1 req/s is created, per Nominatim's usage policy.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim reverse geocoding client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.RatePerSecond = 1
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Reverse resolves coordinates via GET /reverse with full address details.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*geocode.RawResult, error) {
	url := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%.7f&lon=%.7f&zoom=%d&addressdetails=1",
		c.baseURL, lat, lon, reverseZoom)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	// Nominatim reports unresolvable coordinates as 200 with an error field.
	if payload.Error != "" {
		return nil, geocode.ErrNoResult
	}

	return &geocode.RawResult{
		DisplayName: payload.DisplayName,
		Class:       payload.Category,
		Type:        payload.Type,
		Name:        payload.Name,
		Address:     payload.Address,
	}, nil
}

// Healthy reports whether the provider circuit is closed.
func (c *Client) Healthy() bool {
	return c.httpClient.Healthy()
}

// CircuitState returns the current circuit breaker state as a string.
func (c *Client) CircuitState() string {
	return c.httpClient.State().String()
}

// reverseResponse is the Nominatim jsonv2 reverse geocoding payload.
type reverseResponse struct {
	Error       string             `json:"error"`
	DisplayName string             `json:"display_name"`
	Category    string             `json:"category"`
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Address     geocode.RawAddress `json:"address"`
}
