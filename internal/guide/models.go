// Package guide coordinates position tracking, reverse geocoding and
// address change detection for registered devices and fans the results out
// to subscribers.
package guide

import (
	"errors"
	"fmt"
	"time"

	"github.com/rotaguia/rotaguia/internal/address"
	"github.com/rotaguia/rotaguia/internal/position"
)

// Guide errors.
var (
	ErrUnknownDevice = errors.New("unknown device")
	ErrDeviceExists  = errors.New("device already registered")
)

// Event tags published by the guide service. Consumers switch on exact
// string equality.
const (
	EventPositionUpdated    = "position updated"
	EventPositionNotUpdated = "position not updated"
	EventAddressUpdated     = "address updated"
)

// Event is a guide notification delivered to subscribers.
type Event struct {
	// Tag is one of the Event* constants.
	Tag string `json:"tag"`

	// DeviceID identifies the device the event belongs to.
	DeviceID string `json:"deviceId"`

	// Time is when the event was published.
	Time time.Time `json:"time"`

	// Outcome is set on position events.
	Outcome *position.Outcome `json:"outcome,omitempty"`

	// Address and Changes are set on address events.
	Address *address.Address   `json:"address,omitempty"`
	Changes *address.ChangeSet `json:"changes,omitempty"`

	// Announcement is set when an address event warrants speaking.
	Announcement *Announcement `json:"announcement,omitempty"`
}

// Announcement is the single spoken notification for an address change.
// Only the broadest changed hierarchy level is announced.
type Announcement struct {
	Field address.ChangeField `json:"field"`
	Text  string              `json:"text"`
}

// buildAnnouncement renders the two-level suppression rule into spoken
// Portuguese for the speech layer.
func buildAnnouncement(cs address.ChangeSet) *Announcement {
	change, ok := cs.Announce()
	if !ok || change.Current == nil {
		return nil
	}

	var text string
	switch change.Field {
	case address.FieldMunicipio:
		text = fmt.Sprintf("Você chegou ao município de %s", *change.Current)
	case address.FieldBairro:
		text = fmt.Sprintf("Você entrou no bairro %s", *change.Current)
	case address.FieldLogradouro:
		text = fmt.Sprintf("Você está em %s", *change.Current)
	}

	return &Announcement{Field: change.Field, Text: text}
}

// Result summarizes the processing of one fix.
type Result struct {
	// Outcome of the acceptance evaluation.
	Outcome position.Outcome

	// Address is the standardized address after an accepted fix, nil when
	// the fix was rejected or geocoding failed.
	Address *address.Address

	// Changes compares the previous and current address; nil without an
	// address.
	Changes *address.ChangeSet

	// Announcement to speak, nil when nothing changed.
	Announcement *Announcement

	// GeocodeErr records a geocoding failure for an otherwise accepted
	// fix. The fix itself still counts as accepted.
	GeocodeErr error
}
