// Package geo selects reports lying within a great-circle radius of a point.
package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius of the spherical model.
	EarthRadiusKm = 6371.0

	// DefaultRadiusKm is the corroboration neighbourhood.
	DefaultRadiusKm = 5.0
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether p holds finite, in-range coordinates.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Haversine returns the great-circle distance between a and b in kilometres:
//
//	d = 2R·asin(√(sin²(Δφ/2) + cosφ1·cosφ2·sin²(Δλ/2)))
func Haversine(a, b Point) float64 {
	phi1, phi2 := radians(a.Lat), radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// WithinRadius returns the items of pool whose location is at most radiusKm
// from target. Items with invalid coordinates are skipped. A non-positive
// radius falls back to DefaultRadiusKm.
func WithinRadius[T any](target Point, pool []T, radiusKm float64, loc func(T) Point) []T {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	if !target.Valid() {
		return nil
	}

	var out []T
	for _, item := range pool {
		p := loc(item)
		if !p.Valid() {
			continue
		}
		if Haversine(target, p) <= radiusKm {
			out = append(out, item)
		}
	}
	return out
}
