package worker_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaguia/rotaguia/internal/address"
	"github.com/rotaguia/rotaguia/internal/geocode"
	"github.com/rotaguia/rotaguia/internal/worker"
)

// fakeProvider resolves every point to the same village address, or fails
// when failing is set.
type fakeProvider struct {
	calls   int
	failing bool
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Reverse(_ context.Context, lat, lon float64) (*geocode.RawResult, error) {
	p.calls++
	if p.failing {
		return nil, errors.New("provider down")
	}
	return &geocode.RawResult{
		DisplayName: "Rua Direita, Milho Verde, Serro",
		Address: geocode.RawAddress{
			Road:        "Rua Direita",
			Suburb:      "Milho Verde",
			City:        "Serro",
			State:       "Minas Gerais",
			CountryCode: "br",
		},
	}, nil
}

func newTestGeocoder(provider geocode.Provider) *geocode.Service {
	logger := zerolog.New(io.Discard)
	return geocode.NewService(geocode.ServiceConfig{
		Provider: provider,
		Cache:    address.NewCache(address.CacheConfig{Logger: logger}),
		Logger:   logger,
	})
}

func smallConfig() worker.PrewarmConfig {
	return worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:     "Milho Verde",
				Priority: 1,
				Points: []worker.Point{
					{Lat: -18.4696091, Lon: -43.4953982},
					{Lat: -18.4703049, Lon: -43.4955205},
				},
			},
			{
				Name:     "Serro",
				Priority: 2,
				Points: []worker.Point{
					{Lat: -18.6050951, Lon: -43.3792059},
				},
			},
		},
		Concurrency: 1,
		Timeout:     5 * time.Second,
	}
}

func TestPrewarmConfig_TotalPoints(t *testing.T) {
	cfg := smallConfig()
	assert.Equal(t, 3, cfg.TotalPoints())
	assert.Len(t, cfg.AllPoints(), 3)
}

func TestDefaultPrewarmTargets_NotEmpty(t *testing.T) {
	cfg := worker.DefaultPrewarmConfig()
	assert.NotEmpty(t, cfg.Targets)
	assert.Greater(t, cfg.TotalPoints(), 0)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestPrewarmJob_ResolvesAllPoints(t *testing.T) {
	provider := &fakeProvider{}
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:   smallConfig(),
		Geocoder: newTestGeocoder(provider),
		Logger:   zerolog.New(io.Discard),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 3, result.TotalPoints)
	assert.Equal(t, 3, result.Resolved)
	assert.Zero(t, result.Failed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, provider.calls)
}

func TestPrewarmJob_WarmsTheCache(t *testing.T) {
	provider := &fakeProvider{}
	geocoder := newTestGeocoder(provider)
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:   smallConfig(),
		Geocoder: geocoder,
		Logger:   zerolog.New(io.Discard),
	})

	job.Run(context.Background())

	// Every point resolved to the same fingerprint, so one entry and two
	// hits against it.
	stats := geocoder.CacheStats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(2), stats.Hits)
}

func TestPrewarmJob_CountsFailures(t *testing.T) {
	provider := &fakeProvider{failing: true}
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:   smallConfig(),
		Geocoder: newTestGeocoder(provider),
		Logger:   zerolog.New(io.Discard),
	})

	result := job.Run(context.Background())

	assert.Zero(t, result.Resolved)
	assert.Equal(t, 3, result.Failed)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0].Error, "provider down")
}

func TestPrewarmJob_UpdatesMetrics(t *testing.T) {
	provider := &fakeProvider{}
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:   smallConfig(),
		Geocoder: newTestGeocoder(provider),
		Logger:   zerolog.New(io.Discard),
	})

	job.Run(context.Background())
	job.Run(context.Background())

	m := job.Metrics().Snapshot()
	assert.Equal(t, int64(2), m.TotalRuns)
	assert.Equal(t, int64(6), m.TotalLookups)
	assert.Zero(t, m.FailedLookups)
	assert.Equal(t, 3, m.LastRunResolved)
	assert.False(t, m.LastRunAt.IsZero())
}

func TestPrewarmJob_CancelledContext(t *testing.T) {
	provider := &fakeProvider{}
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:   smallConfig(),
		Geocoder: newTestGeocoder(provider),
		Logger:   zerolog.New(io.Discard),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.Run(ctx)

	assert.Equal(t, 3, result.Failed)
	assert.Zero(t, provider.calls)
}
