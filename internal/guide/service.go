package guide

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/address"
	"github.com/rotaguia/rotaguia/internal/geocode"
	"github.com/rotaguia/rotaguia/internal/notify"
	"github.com/rotaguia/rotaguia/internal/position"
)

// ServiceConfig holds configuration for the guide service.
type ServiceConfig struct {
	// Geocoder resolves accepted fixes into standardized addresses.
	Geocoder *geocode.Service

	// MinDistance and MinInterval configure every device tracker
	// (defaults per the position package).
	MinDistance float64
	MinInterval time.Duration

	// Logger for service operations.
	Logger zerolog.Logger
}

// Session is the per-device state: the position tracker plus the current
// standardized address.
type Session struct {
	DeviceID string
	Profile  position.Profile
	Tracker  *position.Tracker

	mu          sync.Mutex
	currAddress *address.Address
	lastChanges *address.ChangeSet
}

// CurrentAddress returns the session's standardized address and the change
// set that produced it. Both are nil before the first resolution.
func (s *Session) CurrentAddress() (*address.Address, *address.ChangeSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currAddress, s.lastChanges
}

// Service owns the device sessions and runs the fix pipeline: evaluate →
// geocode → compare → announce → notify.
type Service struct {
	geocoder    *geocode.Service
	minDistance float64
	minInterval time.Duration
	logger      zerolog.Logger

	events *notify.Emitter[Event]

	// Field-level change hooks, one emitter per tracked hierarchy level.
	logradouroChanges *notify.Emitter[address.ChangeDetails]
	bairroChanges     *notify.Emitter[address.ChangeDetails]
	municipioChanges  *notify.Emitter[address.ChangeDetails]

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a guide service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		geocoder:          cfg.Geocoder,
		minDistance:       cfg.MinDistance,
		minInterval:       cfg.MinInterval,
		logger:            cfg.Logger,
		events:            notify.NewEmitter[Event](cfg.Logger),
		logradouroChanges: notify.NewEmitter[address.ChangeDetails](cfg.Logger),
		bairroChanges:     notify.NewEmitter[address.ChangeDetails](cfg.Logger),
		municipioChanges:  notify.NewEmitter[address.ChangeDetails](cfg.Logger),
		sessions:          make(map[string]*Session),
	}
}

// Subscribe registers a callback for all guide events.
func (s *Service) Subscribe(fn func(Event)) notify.Subscription {
	return s.events.Subscribe(fn)
}

// Unsubscribe removes an event subscriber.
func (s *Service) Unsubscribe(sub notify.Subscription) {
	s.events.Unsubscribe(sub)
}

// OnLogradouroChange registers a hook fired whenever a device's logradouro
// changes, regardless of announcement suppression.
func (s *Service) OnLogradouroChange(fn func(address.ChangeDetails)) notify.Subscription {
	return s.logradouroChanges.Subscribe(fn)
}

// OnBairroChange registers a hook for bairro changes.
func (s *Service) OnBairroChange(fn func(address.ChangeDetails)) notify.Subscription {
	return s.bairroChanges.Subscribe(fn)
}

// OnMunicipioChange registers a hook for município changes.
func (s *Service) OnMunicipioChange(fn func(address.ChangeDetails)) notify.Subscription {
	return s.municipioChanges.Subscribe(fn)
}

// Register creates a session for a device. The device profile is fixed
// here; it is configuration, not something re-detected per fix.
func (s *Service) Register(deviceID string, profile position.Profile) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[deviceID]; ok {
		return nil, ErrDeviceExists
	}

	session := &Session{
		DeviceID: deviceID,
		Profile:  profile,
		Tracker: position.NewTracker(position.TrackerConfig{
			Profile:     profile,
			MinDistance: s.minDistance,
			MinInterval: s.minInterval,
			Logger:      s.logger.With().Str("device_id", deviceID).Logger(),
		}),
	}
	s.sessions[deviceID] = session

	s.logger.Info().
		Str("device_id", deviceID).
		Str("profile", string(profile)).
		Msg("device registered")

	return session, nil
}

// Session returns the session for a device.
func (s *Service) Session(deviceID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[deviceID]
	if !ok {
		return nil, ErrUnknownDevice
	}
	return session, nil
}

// Remove drops a device session.
func (s *Service) Remove(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, deviceID)
}

// SessionCount returns the number of registered devices.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ProcessFix runs one raw fix through the pipeline. Rejection is a normal
// result, not an error; a geocoding failure after acceptance is reported in
// the result but does not undo the acceptance.
func (s *Service) ProcessFix(ctx context.Context, deviceID string, fix *position.Fix) (*Result, error) {
	session, err := s.Session(deviceID)
	if err != nil {
		return nil, err
	}

	reading := position.NewReading(fix)
	outcome := session.Tracker.Evaluate(reading)

	result := &Result{Outcome: outcome}

	tag := EventPositionNotUpdated
	if outcome.Accepted {
		tag = EventPositionUpdated
	}
	s.events.Notify(Event{
		Tag:      tag,
		DeviceID: deviceID,
		Time:     time.Now(),
		Outcome:  &outcome,
	})

	if !outcome.Accepted {
		return result, nil
	}

	point := reading.Point()
	addr, err := s.geocoder.Resolve(ctx, point.Lat, point.Lon)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("device_id", deviceID).
			Msg("accepted fix could not be geocoded")
		result.GeocodeErr = err
		return result, nil
	}

	session.mu.Lock()
	previous := session.currAddress
	changes := address.Compare(previous, addr)
	session.currAddress = addr
	session.lastChanges = &changes
	session.mu.Unlock()

	result.Address = addr
	result.Changes = &changes
	result.Announcement = buildAnnouncement(changes)

	s.fireFieldHooks(changes)

	s.events.Notify(Event{
		Tag:          EventAddressUpdated,
		DeviceID:     deviceID,
		Time:         time.Now(),
		Address:      addr,
		Changes:      &changes,
		Announcement: result.Announcement,
	})

	return result, nil
}

// ReverseGeocode exposes direct resolution without touching any session.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (*address.Address, error) {
	return s.geocoder.Resolve(ctx, lat, lon)
}

// CacheStats reports the address cache counters.
func (s *Service) CacheStats() address.CacheStats {
	return s.geocoder.CacheStats()
}

// Reset clears every session and the address cache. Intended for teardown
// and tests.
func (s *Service) Reset() {
	s.mu.Lock()
	for _, session := range s.sessions {
		session.Tracker.Reset()
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	s.geocoder.ClearCache()
}

func (s *Service) fireFieldHooks(cs address.ChangeSet) {
	if cs.Logradouro.Changed {
		s.logradouroChanges.Notify(cs.Logradouro)
	}
	if cs.Bairro.Changed {
		s.bairroChanges.Notify(cs.Bairro)
	}
	if cs.Municipio.Changed {
		s.municipioChanges.Notify(cs.Municipio)
	}
}
