package position_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaguia/rotaguia/internal/position"
)

const baseTS = int64(1700000000000)

func newTracker(t *testing.T, profile position.Profile) *position.Tracker {
	t.Helper()
	return position.NewTracker(position.TrackerConfig{
		Profile: profile,
		Logger:  zerolog.Nop(),
	})
}

func fixAt(lat, lon, accuracy float64, ts int64) position.Reading {
	return position.NewReading(&position.Fix{
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  accuracy,
		Timestamp: ts,
	})
}

func TestTracker_FirstReadingAlwaysAccepted(t *testing.T) {
	tr := newTracker(t, position.ProfileMobile)

	outcome := tr.Evaluate(fixAt(-18.4696091, -43.4953982, 5, baseTS))

	assert.True(t, outcome.Accepted)
	assert.Equal(t, position.EventUpdated, outcome.Event)

	current, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, -18.4696091, current.Point().Lat)
}

func TestTracker_RejectsNoDataReading(t *testing.T) {
	tr := newTracker(t, position.ProfileMobile)

	outcome := tr.Evaluate(position.NewReading(nil))

	assert.False(t, outcome.Accepted)
	assert.Equal(t, position.EventNotUpdated, outcome.Event)
	assert.Equal(t, "reading has no position data", outcome.Reason)

	_, ok := tr.Current()
	assert.False(t, ok)
}

func TestTracker_RejectsMissingTimestamp(t *testing.T) {
	tr := newTracker(t, position.ProfileMobile)

	outcome := tr.Evaluate(fixAt(-18.47, -43.5, 5, 0))

	assert.False(t, outcome.Accepted)
	assert.Equal(t, "reading has no timestamp", outcome.Reason)
}

func TestTracker_AccuracyRejectionByProfile(t *testing.T) {
	mobile := newTracker(t, position.ProfileMobile)
	desktop := newTracker(t, position.ProfileDesktop)

	// MEDIUM (50 m) is rejected on mobile but accepted on desktop.
	medium := fixAt(-18.47, -43.5, 50, baseTS)

	outcome := mobile.Evaluate(medium)
	assert.False(t, outcome.Accepted)
	assert.Contains(t, outcome.Reason, "MEDIUM")
	assert.Contains(t, outcome.Reason, "mobile")

	assert.True(t, desktop.Evaluate(medium).Accepted)

	// BAD (500 m) is rejected on both.
	bad := fixAt(-18.47, -43.5, 500, baseTS+1000)
	assert.False(t, mobile.Evaluate(bad).Accepted)
	assert.False(t, desktop.Evaluate(bad).Accepted)
}

func TestTracker_ThresholdMatrix(t *testing.T) {
	// ~0.00009 degrees latitude is roughly 10 m; ~0.00045 is roughly 50 m.
	const lat0, lon0 = -18.4696, -43.4954

	tests := []struct {
		name     string
		lat      float64
		deltaMS  int64
		accepted bool
	}{
		{"near and soon", lat0 + 0.00009, 30_000, false},
		{"near but late", lat0 + 0.00009, 61_000, true},
		{"far and immediate", lat0 + 0.00045, 1_000, true},
		{"far and late", lat0 + 0.00045, 120_000, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTracker(t, position.ProfileMobile)
			require.True(t, tr.Evaluate(fixAt(lat0, lon0, 5, baseTS)).Accepted)

			outcome := tr.Evaluate(fixAt(tc.lat, lon0, 5, baseTS+tc.deltaMS))
			assert.Equal(t, tc.accepted, outcome.Accepted)
			if !tc.accepted {
				assert.Equal(t, "neither distance nor time threshold met", outcome.Reason)
			}
		})
	}
}

func TestTracker_SaoPauloToRioScenario(t *testing.T) {
	tr := newTracker(t, position.ProfileMobile)

	first := tr.Evaluate(fixAt(-23.5505, -46.6333, 10, baseTS))
	require.False(t, first.Accepted == false, "first reading must be accepted")

	second := tr.Evaluate(fixAt(-22.9068, -43.1729, 8, baseTS+61_000))
	require.True(t, second.Accepted)
	assert.InDelta(t, 357_500, second.Distance, 1000)
}

func TestTracker_RejectionDoesNotReplaceState(t *testing.T) {
	tr := newTracker(t, position.ProfileMobile)
	tr.Evaluate(fixAt(-18.4696, -43.4954, 5, baseTS))

	tr.Evaluate(fixAt(-18.4696, -43.4954, 5, baseTS+1000))

	current, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, baseTS, current.TimestampMillis())
}

func TestTracker_NotifiesSubscribersOnBothOutcomes(t *testing.T) {
	tr := newTracker(t, position.ProfileMobile)

	var events []string
	tr.Subscribe(func(o position.Outcome) { events = append(events, o.Event) })

	tr.Evaluate(fixAt(-18.4696, -43.4954, 5, baseTS))
	tr.Evaluate(fixAt(-18.4696, -43.4954, 5, baseTS+1000))

	assert.Equal(t, []string{position.EventUpdated, position.EventNotUpdated}, events)
}

func TestTracker_Reset(t *testing.T) {
	tr := newTracker(t, position.ProfileMobile)
	tr.Evaluate(fixAt(-18.4696, -43.4954, 5, baseTS))

	tr.Reset()

	_, ok := tr.Current()
	assert.False(t, ok)

	// After reset the next reading is a first reading again.
	assert.True(t, tr.Evaluate(fixAt(-18.4696, -43.4954, 5, baseTS+1000)).Accepted)
}
