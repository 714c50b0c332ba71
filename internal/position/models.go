// Package position implements GPS fix evaluation: each incoming reading is
// classified by accuracy and accepted or rejected against distance and time
// thresholds relative to the last accepted reading.
package position

import (
	"errors"
	"time"

	"github.com/rotaguia/rotaguia/internal/geo"
)

// Position errors.
var (
	ErrNoData          = errors.New("reading has no position data")
	ErrMissingTimestamp = errors.New("reading has no timestamp")
)

// AccuracyQuality is a coarse classification of a GPS accuracy radius.
type AccuracyQuality string

const (
	QualityExcellent AccuracyQuality = "EXCELLENT" // < 10 m
	QualityGood      AccuracyQuality = "GOOD"      // < 30 m
	QualityMedium    AccuracyQuality = "MEDIUM"    // < 100 m
	QualityBad       AccuracyQuality = "BAD"       // < 1000 m
	QualityVeryBad   AccuracyQuality = "VERY_BAD"  // >= 1000 m
)

// ClassifyAccuracy maps an accuracy radius in meters to a quality level.
// The mapping depends on the accuracy value alone.
func ClassifyAccuracy(accuracy float64) AccuracyQuality {
	switch {
	case accuracy < 10:
		return QualityExcellent
	case accuracy < 30:
		return QualityGood
	case accuracy < 100:
		return QualityMedium
	case accuracy < 1000:
		return QualityBad
	default:
		return QualityVeryBad
	}
}

// Profile is the device class a tracker is configured for. It is resolved
// once at device registration and injected, never sniffed at runtime.
type Profile string

const (
	ProfileMobile  Profile = "mobile"
	ProfileDesktop Profile = "desktop"
)

// Rejects reports whether readings of the given quality are discarded for
// this profile. Mobile devices get real GPS fixes, so anything worse than
// GOOD is noise; desktop positioning is coarse by nature and only the two
// worst levels are discarded.
func (p Profile) Rejects(q AccuracyQuality) bool {
	switch p {
	case ProfileMobile:
		return q == QualityMedium || q == QualityBad || q == QualityVeryBad
	default:
		return q == QualityBad || q == QualityVeryBad
	}
}

// Valid reports whether p is a known profile.
func (p Profile) Valid() bool {
	return p == ProfileMobile || p == ProfileDesktop
}

// Fix is a raw positioning payload as delivered by a geolocation source.
// Optional fields are nil when the source could not provide them.
type Fix struct {
	Latitude         float64
	Longitude        float64
	Accuracy         float64
	Altitude         *float64
	AltitudeAccuracy *float64
	Heading          *float64
	Speed            *float64

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64
}

// Reading is an immutable snapshot of a single GPS fix with its derived
// accuracy quality. The zero value (and any reading built from a nil fix)
// carries no data; accessors report that instead of panicking.
type Reading struct {
	point            geo.Point
	accuracy         float64
	altitude         *float64
	altitudeAccuracy *float64
	heading          *float64
	speed            *float64
	timestamp        int64
	quality          AccuracyQuality
	hasData          bool
}

// NewReading builds a Reading from a raw fix. A nil fix yields the no-data
// sentinel reading.
func NewReading(fix *Fix) Reading {
	if fix == nil {
		return Reading{}
	}
	return Reading{
		point:            geo.Point{Lat: fix.Latitude, Lon: fix.Longitude},
		accuracy:         fix.Accuracy,
		altitude:         fix.Altitude,
		altitudeAccuracy: fix.AltitudeAccuracy,
		heading:          fix.Heading,
		speed:            fix.Speed,
		timestamp:        fix.Timestamp,
		quality:          ClassifyAccuracy(fix.Accuracy),
		hasData:          true,
	}
}

// HasData reports whether the reading was built from an actual fix.
func (r Reading) HasData() bool { return r.hasData }

// Point returns the reading's coordinates.
func (r Reading) Point() geo.Point { return r.point }

// Accuracy returns the accuracy radius in meters.
func (r Reading) Accuracy() float64 { return r.accuracy }

// Quality returns the accuracy quality derived at construction.
func (r Reading) Quality() AccuracyQuality { return r.quality }

// Altitude returns the altitude in meters, or nil if not reported.
func (r Reading) Altitude() *float64 { return r.altitude }

// AltitudeAccuracy returns the altitude accuracy, or nil if not reported.
func (r Reading) AltitudeAccuracy() *float64 { return r.altitudeAccuracy }

// Heading returns the heading in degrees, or nil if not reported.
func (r Reading) Heading() *float64 { return r.heading }

// Speed returns the ground speed in m/s, or nil if not reported.
func (r Reading) Speed() *float64 { return r.speed }

// TimestampMillis returns the fix timestamp in milliseconds since epoch.
func (r Reading) TimestampMillis() int64 { return r.timestamp }

// Time returns the fix timestamp as a time.Time.
func (r Reading) Time() time.Time {
	return time.UnixMilli(r.timestamp)
}

// DistanceTo returns the great-circle distance to another reading in meters.
// Readings without data are treated as zero distance.
func (r Reading) DistanceTo(other Reading) float64 {
	if !r.hasData || !other.hasData {
		return 0
	}
	return geo.Distance(r.point, other.point)
}
