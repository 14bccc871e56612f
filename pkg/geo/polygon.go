package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Contains reports whether point lies inside polygon. The test is planar in
// the (lng, lat) frame; TripGo regions are small enough that no geodesic
// correction is needed. Points on the boundary count as inside.
//
// Polygons with fewer than 3 vertices contain nothing. An unclosed polygon is
// closed by repeating its first vertex.
func Contains(point Coordinate, polygon []Coordinate) bool {
	if len(polygon) < 3 {
		return false
	}
	return planar.RingContains(toRing(polygon), orb.Point{point.Lng, point.Lat})
}

// ContainsEncoded decodes an encoded polygon and tests point against it.
func ContainsEncoded(point Coordinate, encoded string) (bool, error) {
	polygon, err := DecodePolygon(encoded)
	if err != nil {
		return false, err
	}
	return Contains(point, polygon), nil
}

// Close returns polygon with its first vertex appended when the first and
// last vertices differ. Closed polygons are returned unchanged.
func Close(polygon []Coordinate) []Coordinate {
	if len(polygon) == 0 || polygon[0] == polygon[len(polygon)-1] {
		return polygon
	}
	closed := make([]Coordinate, len(polygon), len(polygon)+1)
	copy(closed, polygon)
	return append(closed, polygon[0])
}

func toRing(polygon []Coordinate) orb.Ring {
	closed := Close(polygon)
	ring := make(orb.Ring, len(closed))
	for i, v := range closed {
		ring[i] = orb.Point{v.Lng, v.Lat}
	}
	return ring
}
