package geocode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/address"
)

// Observer receives geocoding telemetry events. Implementations must be
// safe for concurrent use.
type Observer interface {
	RecordLookup(provider string, duration time.Duration, err error)
	RecordCacheHit(provider string)
	RecordCacheMiss(provider string)
}

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the reverse geocoding backend.
	Provider Provider

	// Cache holds standardized addresses keyed by result fingerprint.
	// Required.
	Cache *address.Cache

	// Classifier maps POI class/type pairs to descriptions. Defaults to
	// the built-in whitelist.
	Classifier *address.Classifier

	// Observer receives lookup telemetry. Optional.
	Observer Observer

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service resolves coordinates into standardized addresses, reusing cached
// standardizations when the provider returns a result it has seen before.
type Service struct {
	provider   Provider
	cache      *address.Cache
	classifier *address.Classifier
	observer   Observer
	logger     zerolog.Logger
}

// NewService creates a geocoding service.
func NewService(cfg ServiceConfig) *Service {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = address.DefaultClassifier()
	}

	return &Service{
		provider:   cfg.Provider,
		cache:      cfg.Cache,
		classifier: classifier,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
}

// Resolve reverse-geocodes coordinates into a standardized address. The
// raw result's fingerprint keys the cache, so repeated results for the same
// address skip re-standardization and get the exact same Address value.
func (s *Service) Resolve(ctx context.Context, lat, lon float64) (*address.Address, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}

	start := time.Now()
	raw, err := s.provider.Reverse(ctx, lat, lon)
	if s.observer != nil {
		s.observer.RecordLookup(s.provider.Name(), time.Since(start), err)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Str("provider", s.provider.Name()).
			Msg("reverse geocoding failed")
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if raw == nil {
		return nil, ErrNoResult
	}

	fingerprint := raw.CacheKey()
	if cached, ok := s.cache.Lookup(fingerprint); ok {
		if s.observer != nil {
			s.observer.RecordCacheHit(s.provider.Name())
		}
		s.logger.Debug().Str("fingerprint", fingerprint).Msg("address cache hit")
		return cached, nil
	}

	if s.observer != nil {
		s.observer.RecordCacheMiss(s.provider.Name())
	}
	addr := Extract(raw, s.classifier)
	s.cache.Store(fingerprint, addr)

	s.logger.Debug().
		Str("fingerprint", fingerprint).
		Str("address", addr.String()).
		Msg("standardized new address")

	return addr, nil
}

// CacheStats exposes the underlying cache counters.
func (s *Service) CacheStats() address.CacheStats {
	return s.cache.Stats()
}

// ClearCache resets the address cache.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// ProviderName returns the configured provider's name.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
