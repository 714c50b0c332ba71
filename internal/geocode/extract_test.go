package geocode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaguia/rotaguia/internal/address"
	"github.com/rotaguia/rotaguia/internal/geocode"
)

func TestExtract_FullResult(t *testing.T) {
	addr := geocode.Extract(milhoVerdeResult(), address.DefaultClassifier())
	require.NotNil(t, addr)

	require.NotNil(t, addr.Logradouro)
	assert.Equal(t, "Rua Direita", *addr.Logradouro)
	require.NotNil(t, addr.Numero)
	assert.Equal(t, "172", *addr.Numero)
	require.NotNil(t, addr.Bairro)
	assert.Equal(t, "Milho Verde", *addr.Bairro)
	require.NotNil(t, addr.Municipio)
	assert.Equal(t, "Serro", *addr.Municipio)
	require.NotNil(t, addr.UF)
	assert.Equal(t, "MG", *addr.UF)
	require.NotNil(t, addr.CEP)
	assert.Equal(t, "39150-000", *addr.CEP)
	assert.Equal(t, "Brasil", addr.Pais)

	require.NotNil(t, addr.Place)
	assert.Equal(t, "camping", addr.Place.Description)
	assert.Equal(t, "Camping Nozinho", addr.Place.Name)
}

func TestExtract_MissingComponentsStayNil(t *testing.T) {
	raw := &geocode.RawResult{
		Address: geocode.RawAddress{
			City:        "Serro",
			State:       "Minas Gerais",
			CountryCode: "br",
		},
	}

	addr := geocode.Extract(raw, address.DefaultClassifier())
	require.NotNil(t, addr)

	assert.Nil(t, addr.Logradouro)
	assert.Nil(t, addr.Numero)
	assert.Nil(t, addr.Bairro)
	assert.Nil(t, addr.CEP)
	require.NotNil(t, addr.Municipio)
	assert.Equal(t, "Serro", *addr.Municipio)
	assert.Equal(t, address.DefaultCountry, addr.Pais, "country defaults when the provider omits it")
	assert.Nil(t, addr.Place)
}

func TestExtract_MunicipioFallbacks(t *testing.T) {
	tests := []struct {
		name string
		addr geocode.RawAddress
		want string
	}{
		{"city wins", geocode.RawAddress{City: "Serro", Town: "X", Municipality: "Y"}, "Serro"},
		{"town next", geocode.RawAddress{Town: "Serro", Municipality: "Y"}, "Serro"},
		{"municipality last", geocode.RawAddress{Municipality: "Serro"}, "Serro"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			addr := geocode.Extract(&geocode.RawResult{Address: tc.addr}, nil)
			require.NotNil(t, addr.Municipio)
			assert.Equal(t, tc.want, *addr.Municipio)
		})
	}
}

func TestExtract_UFMapping(t *testing.T) {
	tests := []struct {
		state string
		want  string
	}{
		{"Minas Gerais", "MG"},
		{"São Paulo", "SP"},
		{"rio de janeiro", "RJ"},
		{"MG", "MG"},
		{"Atlantis", ""},
		{"", ""},
	}

	for _, tc := range tests {
		raw := &geocode.RawResult{Address: geocode.RawAddress{State: tc.state}}
		addr := geocode.Extract(raw, nil)
		if tc.want == "" {
			assert.Nil(t, addr.UF, "state %q", tc.state)
			continue
		}
		require.NotNil(t, addr.UF, "state %q", tc.state)
		assert.Equal(t, tc.want, *addr.UF)
	}
}

func TestExtract_NilResult(t *testing.T) {
	assert.Nil(t, geocode.Extract(nil, address.DefaultClassifier()))
}
