package address_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaguia/rotaguia/internal/address"
)

func newTestCache(maxEntries int, ttl time.Duration) *address.Cache {
	return address.NewCache(address.CacheConfig{
		MaxEntries: maxEntries,
		TTL:        ttl,
		Logger:     zerolog.Nop(),
	})
}

func TestCache_MissThenHit(t *testing.T) {
	c := newTestCache(10, time.Minute)

	_, ok := c.Lookup("rua direita|172|milho verde|serro|39150-000|br")
	assert.False(t, ok)

	// Lookup is idempotent: a second miss before any store is still a miss.
	_, ok = c.Lookup("rua direita|172|milho verde|serro|39150-000|br")
	assert.False(t, ok)

	stored := &address.Address{Logradouro: ptr("Rua Direita"), Pais: address.DefaultCountry}
	c.Store("rua direita|172|milho verde|serro|39150-000|br", stored)

	got, ok := c.Lookup("rua direita|172|milho verde|serro|39150-000|br")
	require.True(t, ok)
	assert.Equal(t, stored, got)

	got2, ok := c.Lookup("rua direita|172|milho verde|serro|39150-000|br")
	require.True(t, ok)
	assert.Equal(t, got, got2)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := newTestCache(10, 20*time.Millisecond)

	c.Store("k", &address.Address{Pais: address.DefaultCountry})

	_, ok := c.Lookup("k")
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)

	_, ok = c.Lookup("k")
	assert.False(t, ok, "entry past TTL must be a miss")
	assert.Equal(t, int64(1), c.Stats().Expired)
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	c := newTestCache(3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Store(fmt.Sprintf("key-%d", i), &address.Address{Pais: address.DefaultCountry})
	}
	c.Store("key-3", &address.Address{Pais: address.DefaultCountry})

	_, ok := c.Lookup("key-0")
	assert.False(t, ok, "oldest entry must be evicted")
	for i := 1; i <= 3; i++ {
		_, ok := c.Lookup(fmt.Sprintf("key-%d", i))
		assert.True(t, ok, "key-%d should survive", i)
	}
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_StoreExistingKeyRefreshes(t *testing.T) {
	c := newTestCache(2, time.Minute)

	c.Store("a", &address.Address{Municipio: ptr("Serro")})
	c.Store("b", &address.Address{Municipio: ptr("Diamantina")})
	c.Store("a", &address.Address{Municipio: ptr("Serro"), Bairro: ptr("Milho Verde")})

	got, ok := c.Lookup("a")
	require.True(t, ok)
	assert.NotNil(t, got.Bairro)

	// Refreshing an existing key must not evict anything.
	_, ok = c.Lookup("b")
	assert.True(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(10, time.Minute)
	c.Store("k", &address.Address{Pais: address.DefaultCountry})

	c.Clear()

	_, ok := c.Lookup("k")
	assert.False(t, ok)
	stats := c.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCache_SweeperPurgesExpired(t *testing.T) {
	c := newTestCache(10, 10*time.Millisecond)
	c.Store("k", &address.Address{Pais: address.DefaultCountry})

	c.StartSweeper(5 * time.Millisecond)
	defer c.StopSweeper()

	assert.Eventually(t, func() bool {
		return c.Stats().Entries == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCache_SweeperRestartAndStopAreIdempotent(t *testing.T) {
	c := newTestCache(10, time.Minute)

	// Restarting replaces the running sweeper rather than stacking one.
	c.StartSweeper(10 * time.Millisecond)
	c.StartSweeper(10 * time.Millisecond)

	c.StopSweeper()
	assert.NotPanics(t, func() { c.StopSweeper() })
}

func TestCache_NilAndEmptyStoresIgnored(t *testing.T) {
	c := newTestCache(10, time.Minute)

	c.Store("", &address.Address{Pais: address.DefaultCountry})
	c.Store("k", nil)

	assert.Equal(t, 0, c.Stats().Entries)
}
