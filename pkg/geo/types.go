// Package geo provides the coordinate type and the planar geometry used to
// match trip endpoints against upstream coverage regions.
package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean radius of Earth according to WGS-84 in meters
const EarthRadius = 6371000.0

// Coordinate is a WGS-84 point. Ranges are not enforced here; the upstream
// API is the source of truth for what it accepts.
//
// Example:
//
//	c := geo.Coordinate{Lat: -33.8688, Lng: 151.2093}
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the coordinate the way TripGo expects it in query strings,
// e.g. "(-33.86880,151.20930)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%.5f,%.5f)", c.Lat, c.Lng)
}

// Valid reports whether the coordinate lies within latitude/longitude bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// HaversineDistance calculates the great-circle distance between two points
// on the Earth's surface given their latitude and longitude in degrees.
// The result is returned in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadius * c
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	return HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)
}
