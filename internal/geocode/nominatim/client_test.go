package nominatim_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaguia/rotaguia/internal/geocode"
	"github.com/rotaguia/rotaguia/internal/geocode/nominatim"
	"github.com/rotaguia/rotaguia/internal/provider/resilience"
)

func TestClient_Reverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "18", r.URL.Query().Get("zoom"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Contains(t, r.URL.Query().Get("lat"), "-18.469")
		assert.Contains(t, r.URL.Query().Get("lon"), "-43.495")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		response := map[string]interface{}{
			"display_name": "Camping Nozinho, 172, Rua Direita, Milho Verde, Serro, Minas Gerais, 39150-000, Brasil",
			"category":     "tourism",
			"type":         "camp_site",
			"name":         "Camping Nozinho",
			"address": map[string]string{
				"road":         "Rua Direita",
				"house_number": "172",
				"suburb":       "Milho Verde",
				"city":         "Serro",
				"state":        "Minas Gerais",
				"postcode":     "39150-000",
				"country":      "Brasil",
				"country_code": "br",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})

	result, err := client.Reverse(context.Background(), -18.4696091, -43.4953982)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "tourism", result.Class)
	assert.Equal(t, "camp_site", result.Type)
	assert.Equal(t, "Camping Nozinho", result.Name)
	assert.Equal(t, "Rua Direita", result.Address.Road)
	assert.Equal(t, "Serro", result.Address.City)
	assert.Equal(t, "rua direita|172|milho verde|serro|39150-000|br", result.CacheKey())
}

func TestClient_ReverseUnresolvable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"error": "Unable to geocode"})
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})

	_, err := client.Reverse(context.Background(), 0, 0)
	assert.ErrorIs(t, err, geocode.ErrNoResult)
}

func TestClient_ReverseServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := resilience.DefaultClientConfig("test")
	cfg.InitialInterval = 1
	cfg.MaxInterval = 2
	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(cfg),
	})

	_, err := client.Reverse(context.Background(), -18.47, -43.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
