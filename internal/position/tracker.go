package position

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/notify"
)

// Default acceptance thresholds.
const (
	DefaultMinDistance = 20.0             // meters
	DefaultMinInterval = 60 * time.Second // time between accepted fixes
)

// Event tags carried by tracker notifications. Consumers switch on exact
// string equality.
const (
	EventUpdated    = "position updated"
	EventNotUpdated = "position not updated"
)

// Outcome is the result of evaluating one reading. Every evaluation is
// final: a rejected reading is dropped, not retried.
type Outcome struct {
	// Event is EventUpdated or EventNotUpdated.
	Event string

	// Accepted reports whether the reading replaced the tracker state.
	Accepted bool

	// Reason explains a rejection in human-readable form. Empty on accept.
	Reason string

	// Reading is the evaluated reading (the no-data sentinel on invalid input).
	Reading Reading

	// Distance is the distance in meters from the previously accepted
	// reading, zero when there was none.
	Distance float64

	// Elapsed is the time since the previously accepted reading, zero when
	// there was none.
	Elapsed time.Duration
}

// TrackerConfig holds configuration for a Tracker.
type TrackerConfig struct {
	// Profile decides which accuracy qualities are rejected.
	Profile Profile

	// MinDistance is the minimum movement in meters for a reading to be
	// significant (default 20).
	MinDistance float64

	// MinInterval is the minimum elapsed time for a reading to be
	// significant regardless of movement (default 60s).
	MinInterval time.Duration

	// Logger for tracker operations.
	Logger zerolog.Logger
}

// Tracker holds the single current position for one device and applies the
// acceptance rule to every incoming reading. The held reading only changes
// through Evaluate; the first valid reading is always accepted, later ones
// must move far enough or arrive late enough.
type Tracker struct {
	profile     Profile
	minDistance float64
	minInterval time.Duration
	logger      zerolog.Logger
	emitter     *notify.Emitter[Outcome]

	mu           sync.Mutex
	lastAccepted Reading
}

// NewTracker creates a tracker with the given configuration.
func NewTracker(cfg TrackerConfig) *Tracker {
	minDistance := cfg.MinDistance
	if minDistance == 0 {
		minDistance = DefaultMinDistance
	}

	minInterval := cfg.MinInterval
	if minInterval == 0 {
		minInterval = DefaultMinInterval
	}

	profile := cfg.Profile
	if !profile.Valid() {
		profile = ProfileDesktop
	}

	return &Tracker{
		profile:     profile,
		minDistance: minDistance,
		minInterval: minInterval,
		logger:      cfg.Logger,
		emitter:     notify.NewEmitter[Outcome](cfg.Logger),
	}
}

// Subscribe registers a callback invoked synchronously for every evaluation
// outcome, accepted or not.
func (t *Tracker) Subscribe(fn func(Outcome)) notify.Subscription {
	return t.emitter.Subscribe(fn)
}

// Unsubscribe removes a subscriber.
func (t *Tracker) Unsubscribe(sub notify.Subscription) {
	t.emitter.Unsubscribe(sub)
}

// Current returns the last accepted reading. The second return value is
// false before the first acceptance.
func (t *Tracker) Current() (Reading, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastAccepted, t.lastAccepted.HasData()
}

// Reset clears the tracker state. Intended for teardown and tests.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastAccepted = Reading{}
}

// Evaluate applies the acceptance rule to a reading and notifies subscribers
// with the outcome. The decision is synchronous and final.
func (t *Tracker) Evaluate(reading Reading) Outcome {
	t.mu.Lock()
	outcome := t.evaluateLocked(reading)
	t.mu.Unlock()

	if outcome.Accepted {
		t.logger.Debug().
			Float64("lat", outcome.Reading.Point().Lat).
			Float64("lon", outcome.Reading.Point().Lon).
			Str("quality", string(outcome.Reading.Quality())).
			Float64("distance_m", outcome.Distance).
			Dur("elapsed", outcome.Elapsed).
			Msg("reading accepted")
	} else {
		t.logger.Debug().
			Str("reason", outcome.Reason).
			Msg("reading rejected")
	}

	t.emitter.Notify(outcome)
	return outcome
}

func (t *Tracker) evaluateLocked(reading Reading) Outcome {
	if !reading.HasData() {
		return Outcome{Event: EventNotUpdated, Reason: ErrNoData.Error()}
	}
	if reading.TimestampMillis() == 0 {
		return Outcome{Event: EventNotUpdated, Reason: ErrMissingTimestamp.Error(), Reading: reading}
	}

	if t.profile.Rejects(reading.Quality()) {
		return Outcome{
			Event:   EventNotUpdated,
			Reason:  fmt.Sprintf("accuracy quality %s not accepted for %s profile", reading.Quality(), t.profile),
			Reading: reading,
		}
	}

	// First valid reading is always significant.
	if !t.lastAccepted.HasData() {
		t.lastAccepted = reading
		return Outcome{Event: EventUpdated, Accepted: true, Reading: reading}
	}

	distance := t.lastAccepted.DistanceTo(reading)
	elapsed := reading.Time().Sub(t.lastAccepted.Time())

	// Either threshold alone suffices.
	if distance <= t.minDistance && elapsed <= t.minInterval {
		return Outcome{
			Event:    EventNotUpdated,
			Reason:   "neither distance nor time threshold met",
			Reading:  reading,
			Distance: distance,
			Elapsed:  elapsed,
		}
	}

	t.lastAccepted = reading
	return Outcome{
		Event:    EventUpdated,
		Accepted: true,
		Reading:  reading,
		Distance: distance,
		Elapsed:  elapsed,
	}
}
