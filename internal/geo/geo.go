// Package geo provides great-circle math for geographic coordinates.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for distance calculations.
const EarthRadiusMeters = 6371000.0

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point is within valid coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the haversine great-circle distance between two points
// in meters. Identical points yield exactly 0.
func Distance(p1, p2 Point) float64 {
	if p1 == p2 {
		return 0
	}

	phi1 := p1.Lat * math.Pi / 180
	phi2 := p2.Lat * math.Pi / 180
	dPhi := (p2.Lat - p1.Lat) * math.Pi / 180
	dLambda := (p2.Lon - p1.Lon) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}
