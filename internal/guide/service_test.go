package guide_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaguia/rotaguia/internal/address"
	"github.com/rotaguia/rotaguia/internal/geocode"
	"github.com/rotaguia/rotaguia/internal/guide"
	"github.com/rotaguia/rotaguia/internal/position"
)

const baseTS = int64(1700000000000)

// scriptedProvider returns queued raw results in order.
type scriptedProvider struct {
	results []*geocode.RawResult
	err     error
	calls   int
}

func (p *scriptedProvider) Reverse(_ context.Context, _, _ float64) (*geocode.RawResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if len(p.results) == 0 {
		return nil, geocode.ErrNoResult
	}
	r := p.results[0]
	if len(p.results) > 1 {
		p.results = p.results[1:]
	}
	return r, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func rawResult(road, bairro, municipio string) *geocode.RawResult {
	return &geocode.RawResult{
		Address: geocode.RawAddress{
			Road:        road,
			Suburb:      bairro,
			City:        municipio,
			State:       "Minas Gerais",
			Country:     "Brasil",
			CountryCode: "br",
		},
	}
}

func newGuideService(p geocode.Provider) *guide.Service {
	geocoder := geocode.NewService(geocode.ServiceConfig{
		Provider: p,
		Cache: address.NewCache(address.CacheConfig{
			MaxEntries: 10,
			TTL:        time.Minute,
			Logger:     zerolog.Nop(),
		}),
		Logger: zerolog.Nop(),
	})
	return guide.NewService(guide.ServiceConfig{
		Geocoder: geocoder,
		Logger:   zerolog.Nop(),
	})
}

func fix(lat, lon float64, ts int64) *position.Fix {
	return &position.Fix{Latitude: lat, Longitude: lon, Accuracy: 5, Timestamp: ts}
}

func TestService_RegisterAndDuplicate(t *testing.T) {
	svc := newGuideService(&scriptedProvider{})

	session, err := svc.Register("dev-1", position.ProfileMobile)
	require.NoError(t, err)
	assert.Equal(t, position.ProfileMobile, session.Profile)

	_, err = svc.Register("dev-1", position.ProfileMobile)
	assert.ErrorIs(t, err, guide.ErrDeviceExists)
}

func TestService_ProcessFix_UnknownDevice(t *testing.T) {
	svc := newGuideService(&scriptedProvider{})

	_, err := svc.ProcessFix(context.Background(), "nope", fix(-18.47, -43.5, baseTS))
	assert.ErrorIs(t, err, guide.ErrUnknownDevice)
}

func TestService_ProcessFix_AcceptedResolvesAddress(t *testing.T) {
	provider := &scriptedProvider{results: []*geocode.RawResult{
		rawResult("Rua Direita", "Milho Verde", "Serro"),
	}}
	svc := newGuideService(provider)
	_, err := svc.Register("dev-1", position.ProfileMobile)
	require.NoError(t, err)

	result, err := svc.ProcessFix(context.Background(), "dev-1", fix(-18.4696091, -43.4953982, baseTS))
	require.NoError(t, err)

	assert.True(t, result.Outcome.Accepted)
	require.NotNil(t, result.Address)
	assert.Equal(t, "Rua Direita", *result.Address.Logradouro)

	// First address: everything changed from nil, município wins the
	// announcement.
	require.NotNil(t, result.Announcement)
	assert.Equal(t, address.FieldMunicipio, result.Announcement.Field)
	assert.Equal(t, "Você chegou ao município de Serro", result.Announcement.Text)
}

func TestService_ProcessFix_RejectedSkipsGeocoding(t *testing.T) {
	provider := &scriptedProvider{results: []*geocode.RawResult{
		rawResult("Rua Direita", "Milho Verde", "Serro"),
	}}
	svc := newGuideService(provider)
	_, err := svc.Register("dev-1", position.ProfileMobile)
	require.NoError(t, err)

	_, err = svc.ProcessFix(context.Background(), "dev-1", fix(-18.4696091, -43.4953982, baseTS))
	require.NoError(t, err)
	require.Equal(t, 1, provider.calls)

	// Same spot one second later: rejected, no geocoder call.
	result, err := svc.ProcessFix(context.Background(), "dev-1", fix(-18.4696091, -43.4953982, baseTS+1000))
	require.NoError(t, err)

	assert.False(t, result.Outcome.Accepted)
	assert.Nil(t, result.Address)
	assert.Equal(t, 1, provider.calls)
}

func TestService_ProcessFix_BairroChangeAnnouncement(t *testing.T) {
	provider := &scriptedProvider{results: []*geocode.RawResult{
		rawResult("Rua Direita", "Milho Verde", "Serro"),
		rawResult("Rua Santa Rita", "Capivari", "Serro"),
	}}
	svc := newGuideService(provider)
	_, err := svc.Register("dev-1", position.ProfileMobile)
	require.NoError(t, err)

	_, err = svc.ProcessFix(context.Background(), "dev-1", fix(-18.4696, -43.4954, baseTS))
	require.NoError(t, err)

	result, err := svc.ProcessFix(context.Background(), "dev-1", fix(-18.4800, -43.5100, baseTS+61_000))
	require.NoError(t, err)

	require.NotNil(t, result.Announcement)
	assert.Equal(t, address.FieldBairro, result.Announcement.Field)
	assert.Equal(t, "Você entrou no bairro Capivari", result.Announcement.Text)
	assert.True(t, result.Changes.Logradouro.Changed, "logradouro changed but is suppressed")
}

func TestService_ProcessFix_GeocodeFailureKeepsAcceptance(t *testing.T) {
	svc := newGuideService(&scriptedProvider{err: errors.New("timeout")})
	session, err := svc.Register("dev-1", position.ProfileMobile)
	require.NoError(t, err)

	result, err := svc.ProcessFix(context.Background(), "dev-1", fix(-18.47, -43.5, baseTS))
	require.NoError(t, err)

	assert.True(t, result.Outcome.Accepted)
	assert.Nil(t, result.Address)
	assert.ErrorIs(t, result.GeocodeErr, geocode.ErrProviderUnavailable)

	current, ok := session.Tracker.Current()
	require.True(t, ok)
	assert.Equal(t, baseTS, current.TimestampMillis())
}

func TestService_EventsPublishedInOrder(t *testing.T) {
	provider := &scriptedProvider{results: []*geocode.RawResult{
		rawResult("Rua Direita", "Milho Verde", "Serro"),
	}}
	svc := newGuideService(provider)
	_, err := svc.Register("dev-1", position.ProfileMobile)
	require.NoError(t, err)

	var tags []string
	svc.Subscribe(func(e guide.Event) { tags = append(tags, e.Tag) })

	_, err = svc.ProcessFix(context.Background(), "dev-1", fix(-18.4696, -43.4954, baseTS))
	require.NoError(t, err)
	_, err = svc.ProcessFix(context.Background(), "dev-1", fix(-18.4696, -43.4954, baseTS+1000))
	require.NoError(t, err)

	assert.Equal(t, []string{
		guide.EventPositionUpdated,
		guide.EventAddressUpdated,
		guide.EventPositionNotUpdated,
	}, tags)
}

func TestService_FieldHooksFireRegardlessOfSuppression(t *testing.T) {
	provider := &scriptedProvider{results: []*geocode.RawResult{
		rawResult("Rua Direita", "Milho Verde", "Serro"),
		rawResult("Rua do Rosário", "Centro", "Diamantina"),
	}}
	svc := newGuideService(provider)
	_, err := svc.Register("dev-1", position.ProfileMobile)
	require.NoError(t, err)

	var logradouros, bairros, municipios []string
	svc.OnLogradouroChange(func(c address.ChangeDetails) { logradouros = append(logradouros, *c.Current) })
	svc.OnBairroChange(func(c address.ChangeDetails) { bairros = append(bairros, *c.Current) })
	svc.OnMunicipioChange(func(c address.ChangeDetails) { municipios = append(municipios, *c.Current) })

	_, err = svc.ProcessFix(context.Background(), "dev-1", fix(-18.4696, -43.4954, baseTS))
	require.NoError(t, err)
	_, err = svc.ProcessFix(context.Background(), "dev-1", fix(-18.2494, -43.6005, baseTS+61_000))
	require.NoError(t, err)

	assert.Equal(t, []string{"Rua Direita", "Rua do Rosário"}, logradouros)
	assert.Equal(t, []string{"Milho Verde", "Centro"}, bairros)
	assert.Equal(t, []string{"Serro", "Diamantina"}, municipios)
}

func TestService_Reset(t *testing.T) {
	provider := &scriptedProvider{results: []*geocode.RawResult{
		rawResult("Rua Direita", "Milho Verde", "Serro"),
	}}
	svc := newGuideService(provider)
	_, err := svc.Register("dev-1", position.ProfileMobile)
	require.NoError(t, err)

	_, err = svc.ProcessFix(context.Background(), "dev-1", fix(-18.4696, -43.4954, baseTS))
	require.NoError(t, err)

	svc.Reset()

	assert.Equal(t, 0, svc.SessionCount())
	assert.Equal(t, 0, svc.CacheStats().Entries)
	_, err = svc.Session("dev-1")
	assert.ErrorIs(t, err, guide.ErrUnknownDevice)
}
