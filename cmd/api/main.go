// Package main provides the entrypoint for the RotaGuia API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/address"
	"github.com/rotaguia/rotaguia/internal/announce"
	"github.com/rotaguia/rotaguia/internal/api"
	"github.com/rotaguia/rotaguia/internal/api/handler"
	"github.com/rotaguia/rotaguia/internal/api/middleware"
	"github.com/rotaguia/rotaguia/internal/api/stream"
	"github.com/rotaguia/rotaguia/internal/auth"
	"github.com/rotaguia/rotaguia/internal/geocode"
	"github.com/rotaguia/rotaguia/internal/geocode/nominatim"
	"github.com/rotaguia/rotaguia/internal/guide"
	"github.com/rotaguia/rotaguia/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "rotaguia-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RotaGuia API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	geocodeMetrics, err := middleware.NewGeocodeMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize geocode metrics")
		os.Exit(1)
	}

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     serviceName,
	})

	// Initialize the geocoding provider
	provider := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
		UserAgent: os.Getenv("NOMINATIM_USER_AGENT"),
		Logger:    log,
	})
	log.Info().Str("provider", provider.Name()).Msg("geocoding provider initialized")

	// Initialize the address cache and its background sweeper
	cache := address.NewCache(address.CacheConfig{
		MaxEntries: envInt("ADDRESS_CACHE_SIZE", address.DefaultCacheSize),
		TTL:        envDuration("ADDRESS_CACHE_TTL", address.DefaultCacheTTL),
		Logger:     log,
	})
	cache.StartSweeper(address.DefaultSweepInterval)
	defer cache.StopSweeper()

	geocoder := geocode.NewService(geocode.ServiceConfig{
		Provider: provider,
		Cache:    cache,
		Observer: geocodeMetrics,
		Logger:   log,
	})
	log.Info().Msg("geocoding service initialized")

	// Initialize the guide service
	guideService := guide.NewService(guide.ServiceConfig{
		Geocoder: geocoder,
		Logger:   log,
	})
	log.Info().Msg("guide service initialized")

	// Wire the event stream broker
	broker := stream.NewBroker()
	guideService.Subscribe(broker.Publish)

	// Forward announcements to Pub/Sub when configured
	if projectID := os.Getenv("GOOGLE_CLOUD_PROJECT"); projectID != "" {
		topicName := os.Getenv("ANNOUNCE_TOPIC")
		if topicName == "" {
			topicName = "rotaguia-announcements"
		}
		forwarder, fwdErr := announce.NewPubSubForwarder(ctx, announce.PubSubConfig{
			ProjectID: projectID,
			TopicName: topicName,
			Logger:    log,
		})
		if fwdErr != nil {
			log.Fatal().Err(fwdErr).Msg("failed to initialize announcement forwarder")
		}
		defer func() {
			if closeErr := forwarder.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close announcement forwarder")
			}
		}()
		guideService.Subscribe(forwarder.Handle)
		log.Info().
			Str("topic", topicName).
			Msg("announcement forwarder initialized")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		JWTService:   jwtService,
		GuideService: guideService,
		Broker:       broker,
		Providers:    []handler.ProviderHealth{provider},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// envInt reads an integer environment variable with a fallback.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envDuration reads a duration environment variable with a fallback.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
