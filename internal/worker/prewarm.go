package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/geocode"
)

// PrewarmJob reverse-geocodes tour waypoints so that the address cache is
// already populated when guides start their routes.
type PrewarmJob struct {
	config   PrewarmConfig
	geocoder *geocode.Service
	logger   zerolog.Logger

	metrics *PrewarmMetrics
}

// PrewarmMetrics tracks prewarm job statistics.
type PrewarmMetrics struct {
	mu sync.RWMutex

	TotalRuns       int64
	TotalLookups    int64
	FailedLookups   int64
	LastRunAt       time.Time
	LastRunDuration time.Duration
	LastRunResolved int
	LastRunFailed   int
}

// Snapshot returns a copy of the current metrics.
func (m *PrewarmMetrics) Snapshot() PrewarmMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return PrewarmMetrics{
		TotalRuns:       m.TotalRuns,
		TotalLookups:    m.TotalLookups,
		FailedLookups:   m.FailedLookups,
		LastRunAt:       m.LastRunAt,
		LastRunDuration: m.LastRunDuration,
		LastRunResolved: m.LastRunResolved,
		LastRunFailed:   m.LastRunFailed,
	}
}

// PrewarmJobConfig holds configuration for creating a PrewarmJob.
type PrewarmJobConfig struct {
	Config   PrewarmConfig
	Geocoder *geocode.Service
	Logger   zerolog.Logger
}

// NewPrewarmJob creates a new prewarm job processor.
func NewPrewarmJob(cfg PrewarmJobConfig) *PrewarmJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultPrewarmConfig()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &PrewarmJob{
		config:   config,
		geocoder: cfg.Geocoder,
		logger:   cfg.Logger,
		metrics:  &PrewarmMetrics{},
	}
}

// PrewarmResult contains the result of a prewarm run.
type PrewarmResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	Resolved    int
	Failed      int
	Errors      []PrewarmError
}

// PrewarmError represents a failed lookup during prewarm.
type PrewarmError struct {
	Point Point
	Error string
}

// Metrics returns the job's metrics tracker.
func (j *PrewarmJob) Metrics() *PrewarmMetrics {
	return j.metrics
}

// Run executes the prewarm job for all configured targets.
func (j *PrewarmJob) Run(ctx context.Context) *PrewarmResult {
	startTime := time.Now()
	result := &PrewarmResult{
		StartTime:   startTime,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting address prewarm job")

	points := j.config.AllPoints()

	pointsChan := make(chan Point, len(points))
	resultsChan := make(chan pointResult, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.prewarmWorker(ctx, pointsChan, resultsChan)
		}()
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		if pr.err == "" {
			result.Resolved++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, PrewarmError{Point: pr.point, Error: pr.err})
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("resolved", result.Resolved).
		Int("failed", result.Failed).
		Msg("address prewarm job completed")

	return result
}

type pointResult struct {
	point Point
	err   string
}

func (j *PrewarmJob) prewarmWorker(ctx context.Context, points <-chan Point, results chan<- pointResult) {
	for p := range points {
		select {
		case <-ctx.Done():
			results <- pointResult{point: p, err: ctx.Err().Error()}
			continue
		default:
		}

		lookupCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
		addr, err := j.geocoder.Resolve(lookupCtx, p.Lat, p.Lon)
		cancel()

		if err != nil {
			j.logger.Warn().Err(err).
				Float64("lat", p.Lat).
				Float64("lon", p.Lon).
				Msg("prewarm lookup failed")
			results <- pointResult{point: p, err: err.Error()}
			continue
		}

		j.logger.Debug().
			Float64("lat", p.Lat).
			Float64("lon", p.Lon).
			Str("address", addr.String()).
			Msg("prewarmed address")
		results <- pointResult{point: p}
	}
}

func (j *PrewarmJob) updateMetrics(result *PrewarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.TotalLookups += int64(result.Resolved + result.Failed)
	j.metrics.FailedLookups += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.LastRunResolved = result.Resolved
	j.metrics.LastRunFailed = result.Failed
}
