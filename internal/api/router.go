// Package api provides the HTTP API for RotaGuia.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/api/handler"
	"github.com/rotaguia/rotaguia/internal/api/middleware"
	"github.com/rotaguia/rotaguia/internal/api/stream"
	"github.com/rotaguia/rotaguia/internal/auth"
	"github.com/rotaguia/rotaguia/internal/guide"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	BuildTime    string
	Logger       zerolog.Logger
	ServiceName  string
	Metrics      *middleware.Metrics
	JWTService   *auth.JWTService
	GuideService *guide.Service
	Broker       *stream.Broker
	Providers    []handler.ProviderHealth
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "rotaguia-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.GuideService, cfg.Providers...)
	deviceHandler := handler.NewDeviceHandler(cfg.GuideService, cfg.JWTService)
	trackHandler := handler.NewTrackHandler(cfg.GuideService)
	geocodeHandler := handler.NewGeocodeHandler(cfg.GuideService)

	deviceAuth := middleware.DeviceAuth(cfg.JWTService)

	registerRateLimit := middleware.RateLimitByIP(middleware.RegisterRateLimit)
	geocodeRateLimit := middleware.RateLimitByIP(middleware.GeocodeRateLimit)
	trackRateLimit := middleware.RateLimitByDevice(middleware.TrackRateLimit)
	standardRateLimit := middleware.RateLimitByDevice(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Device registration (public) - strict rate limiting
		r.With(registerRateLimit, middleware.RequireJSON).Post("/devices", deviceHandler.RegisterDevice)

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Tracking endpoints (authenticated device)
		r.Route("/track", func(r chi.Router) {
			// The stream authenticates itself: browser WebSocket clients
			// cannot send an Authorization header.
			if cfg.Broker != nil {
				streamHandler := stream.NewHandler(cfg.Broker, cfg.JWTService, cfg.Logger)
				r.Get("/stream", streamHandler.ServeHTTP)
			}

			r.Group(func(r chi.Router) {
				r.Use(deviceAuth)
				r.With(trackRateLimit, middleware.RequireJSON).Post("/fixes", trackHandler.SubmitFix)
				r.With(standardRateLimit).Get("/position", trackHandler.CurrentPosition)
				r.With(standardRateLimit).Get("/address", trackHandler.CurrentAddress)
			})
		})

		// Direct reverse geocoding (authenticated device) - provider budget
		// is tight, rate limit accordingly
		r.Route("/geocode", func(r chi.Router) {
			r.Use(deviceAuth)
			r.With(geocodeRateLimit, middleware.RequireJSON).Post("/reverse", geocodeHandler.ReverseGeocode)
		})
	})

	return r
}
