// Package worker provides background job processing for RotaGuia.
package worker

import (
	"time"
)

// PrewarmTarget represents a tour region whose addresses are prewarmed.
type PrewarmTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are the lat/lon waypoints to reverse-geocode. Typically the
	// stops of a guided tour.
	Points []Point

	// Priority determines prewarm order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// PrewarmConfig holds configuration for the cache prewarm job.
type PrewarmConfig struct {
	// Targets are the tour regions to prewarm.
	// If empty, uses DefaultPrewarmTargets.
	Targets []PrewarmTarget

	// Concurrency is the number of concurrent lookups. The geocoding
	// provider is rate limited to 1 req/s, so keep this low.
	// Default: 1
	Concurrency int

	// Timeout is the timeout for each lookup.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultPrewarmConfig returns the default prewarm configuration.
func DefaultPrewarmConfig() PrewarmConfig {
	return PrewarmConfig{
		Targets:     DefaultPrewarmTargets(),
		Concurrency: 1,
		Timeout:     30 * time.Second,
	}
}

// DefaultPrewarmTargets returns the default targets: the Estrada Real tour
// villages in the Serro region of Minas Gerais.
func DefaultPrewarmTargets() []PrewarmTarget {
	return []PrewarmTarget{
		{
			Name:     "Milho Verde",
			Priority: 1,
			Points: []Point{
				{Lat: -18.4696091, Lon: -43.4953982}, // Camping Nozinho, Rua Direita
				{Lat: -18.4703049, Lon: -43.4955205}, // Largo do Rosário
				{Lat: -18.4711567, Lon: -43.4966134}, // Igreja Nossa Senhora dos Prazeres
			},
		},
		{
			Name:     "São Gonçalo do Rio das Pedras",
			Priority: 1,
			Points: []Point{
				{Lat: -18.4271852, Lon: -43.5172593}, // Praça central
				{Lat: -18.4285671, Lon: -43.5181209}, // Igreja de São Gonçalo
			},
		},
		{
			Name:     "Serro",
			Priority: 2,
			Points: []Point{
				{Lat: -18.6050951, Lon: -43.3792059}, // Praça João Pinheiro
				{Lat: -18.6081290, Lon: -43.3812331}, // Igreja Santa Rita
			},
		},
		{
			Name:     "Diamantina",
			Priority: 3,
			Points: []Point{
				{Lat: -18.2414707, Lon: -43.6032669}, // Mercado Velho
				{Lat: -18.2450139, Lon: -43.6003910}, // Catedral Metropolitana
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c PrewarmConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to prewarm.
func (c PrewarmConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
