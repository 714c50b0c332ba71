// Package main provides the entrypoint for the RotaGuia background worker.
// The worker prewarms the address cache along configured tour routes, on a
// timer and on demand via Pub/Sub.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/address"
	"github.com/rotaguia/rotaguia/internal/geocode"
	"github.com/rotaguia/rotaguia/internal/geocode/nominatim"
	"github.com/rotaguia/rotaguia/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "rotaguia-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RotaGuia worker")

	// Worker also exposes a health endpoint for the platform's probes
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire the geocoding stack the prewarm job runs against
	provider := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
		UserAgent: os.Getenv("NOMINATIM_USER_AGENT"),
		Logger:    log,
	})

	cache := address.NewCache(address.CacheConfig{Logger: log})
	cache.StartSweeper(address.DefaultSweepInterval)
	defer cache.StopSweeper()

	geocoder := geocode.NewService(geocode.ServiceConfig{
		Provider: provider,
		Cache:    cache,
		Logger:   log,
	})

	prewarmJob := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:   worker.DefaultPrewarmConfig(),
		Geocoder: geocoder,
		Logger:   log,
	})

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub message handling when configured
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	subscription := os.Getenv("WORKER_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			PrewarmJob:       prewarmJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize pubsub handler")
		}
		defer func() {
			if closeErr := handler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub handler")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Warn().Msg("pubsub not configured - running on timer only")
	}

	// Periodic prewarm keeps the cache warm across TTL expirations
	interval := 4 * time.Minute
	if v := os.Getenv("PREWARM_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			interval = d
		}
	}

	go func() {
		// Run once on startup, then on the timer.
		prewarmJob.Run(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				prewarmJob.Run(ctx)
			}
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
