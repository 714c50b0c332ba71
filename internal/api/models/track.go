package models

import (
	"github.com/rotaguia/rotaguia/internal/address"
	"github.com/rotaguia/rotaguia/internal/guide"
	"github.com/rotaguia/rotaguia/internal/position"
)

// RegisterDeviceRequest is the body for POST /v1/devices.
type RegisterDeviceRequest struct {
	// Profile is "mobile" or "desktop". Defaults to "mobile".
	Profile string `json:"profile,omitempty"`

	// Label is an optional human-readable device label.
	Label string `json:"label,omitempty"`
}

// RegisterDeviceResponse is returned after a successful registration.
type RegisterDeviceResponse struct {
	DeviceID  string    `json:"deviceId"`
	Profile   string    `json:"profile"`
	Token     string    `json:"token"`
	ExpiresAt Timestamp `json:"expiresAt"`
}

// FixRequest is the body for POST /v1/track/fixes. Coordinates are WGS84
// and the timestamp is milliseconds since the Unix epoch, matching what
// device geolocation APIs report.
type FixRequest struct {
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Accuracy         float64  `json:"accuracy"`
	Altitude         *float64 `json:"altitude,omitempty"`
	AltitudeAccuracy *float64 `json:"altitudeAccuracy,omitempty"`
	Heading          *float64 `json:"heading,omitempty"`
	Speed            *float64 `json:"speed,omitempty"`
	Timestamp        int64    `json:"timestamp"`
}

// Fix converts the request to the domain fix.
func (f *FixRequest) Fix() *position.Fix {
	return &position.Fix{
		Latitude:         f.Latitude,
		Longitude:        f.Longitude,
		Accuracy:         f.Accuracy,
		Altitude:         f.Altitude,
		AltitudeAccuracy: f.AltitudeAccuracy,
		Heading:          f.Heading,
		Speed:            f.Speed,
		Timestamp:        f.Timestamp,
	}
}

// PositionBody describes an accepted reading in API responses.
type PositionBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Quality   string  `json:"quality"`
	Timestamp int64   `json:"timestamp"`
}

// NewPositionBody builds a PositionBody from a reading. Returns nil for the
// no-data sentinel.
func NewPositionBody(r position.Reading) *PositionBody {
	if !r.HasData() {
		return nil
	}
	pt := r.Point()
	return &PositionBody{
		Latitude:  pt.Lat,
		Longitude: pt.Lon,
		Accuracy:  r.Accuracy(),
		Quality:   string(r.Quality()),
		Timestamp: r.TimestampMillis(),
	}
}

// AnnouncementBody is the spoken notification attached to a fix response.
type AnnouncementBody struct {
	Field string `json:"field"`
	Text  string `json:"text"`
}

// FixResponse is returned for every submitted fix, accepted or not.
type FixResponse struct {
	Event    string `json:"event"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`

	// Distance in meters and elapsed milliseconds since the previously
	// accepted reading. Zero on the first fix.
	DistanceMeters float64 `json:"distanceMeters"`
	ElapsedMillis  int64   `json:"elapsedMillis"`

	Position *PositionBody `json:"position,omitempty"`

	// Address, Changes and Announcement are present only when the fix was
	// accepted and reverse geocoding succeeded.
	Address      *address.Address   `json:"address,omitempty"`
	Formatted    string             `json:"formatted,omitempty"`
	Changes      *address.ChangeSet `json:"changes,omitempty"`
	Announcement *AnnouncementBody  `json:"announcement,omitempty"`

	// GeocodeError is set when the fix was accepted but the address could
	// not be resolved.
	GeocodeError string `json:"geocodeError,omitempty"`
}

// NewFixResponse builds a FixResponse from a guide result.
func NewFixResponse(res *guide.Result) FixResponse {
	out := FixResponse{
		Event:          res.Outcome.Event,
		Accepted:       res.Outcome.Accepted,
		Reason:         res.Outcome.Reason,
		DistanceMeters: res.Outcome.Distance,
		ElapsedMillis:  res.Outcome.Elapsed.Milliseconds(),
		Position:       NewPositionBody(res.Outcome.Reading),
		Address:        res.Address,
		Changes:        res.Changes,
	}
	if res.Address != nil {
		out.Formatted = res.Address.String()
	}
	if res.Announcement != nil {
		out.Announcement = &AnnouncementBody{
			Field: string(res.Announcement.Field),
			Text:  res.Announcement.Text,
		}
	}
	if res.GeocodeErr != nil {
		out.GeocodeError = res.GeocodeErr.Error()
	}
	return out
}

// AddressResponse is returned by GET /v1/track/address and
// POST /v1/geocode/reverse.
type AddressResponse struct {
	Address   *address.Address `json:"address"`
	Formatted string           `json:"formatted"`
}

// NewAddressResponse builds an AddressResponse.
func NewAddressResponse(addr *address.Address) AddressResponse {
	return AddressResponse{Address: addr, Formatted: addr.String()}
}

// ReverseRequest is the body for POST /v1/geocode/reverse.
type ReverseRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
