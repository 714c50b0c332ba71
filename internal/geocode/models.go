// Package geocode provides reverse geocoding: raw provider results are
// standardized into Brazilian addresses and cached by a fingerprint of
// their address components.
package geocode

import (
	"context"
	"errors"
	"strings"
)

// Geocoding errors.
var (
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrNoResult            = errors.New("no geocoding result for location")
)

// Provider is a reverse geocoding backend.
type Provider interface {
	// Reverse resolves coordinates into a raw geocoding result.
	Reverse(ctx context.Context, lat, lon float64) (*RawResult, error)

	// Name returns the provider name for logging and ops output.
	Name() string
}

// RawResult is a reverse-geocoding response in the Nominatim shape.
type RawResult struct {
	DisplayName string     `json:"display_name"`
	Class       string     `json:"class"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Address     RawAddress `json:"address"`
}

// RawAddress carries the address components of a raw result. Providers fill
// different subsets; the extraction layer applies the fallback chains.
type RawAddress struct {
	Road          string `json:"road"`
	HouseNumber   string `json:"house_number"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Village       string `json:"village"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Municipality  string `json:"municipality"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

// bairro returns the neighborhood component using the provider fallback
// chain: neighbourhood, then suburb, then village.
func (a RawAddress) bairro() string {
	switch {
	case a.Neighbourhood != "":
		return a.Neighbourhood
	case a.Suburb != "":
		return a.Suburb
	default:
		return a.Village
	}
}

// municipio returns the municipality component: city, then town, then
// municipality.
func (a RawAddress) municipio() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	default:
		return a.Municipality
	}
}

// CacheKey builds a deterministic fingerprint from the normalized address
// components. Two results with the same components always fingerprint
// identically regardless of display_name wording or coordinates.
func (r *RawResult) CacheKey() string {
	a := r.Address
	parts := []string{
		a.Road,
		a.HouseNumber,
		a.bairro(),
		a.municipio(),
		a.Postcode,
		a.CountryCode,
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}
