package geo

import (
	"fmt"
	"math"
)

// polylinePrecision is the fixed scale of Google's Polyline Algorithm Format
// (Polyline5) as used by TripGo region boundaries.
const polylinePrecision = 1e5

// DecodeError reports a malformed encoded polygon.
type DecodeError struct {
	Offset int    // Byte offset where decoding failed
	Reason string // What was wrong at that offset
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid encoded polygon at offset %d: %s", e.Offset, e.Reason)
}

// DecodePolygon decodes an encoded polyline string into its ordered vertices.
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
//
// An empty string decodes to an empty slice. Truncated values, characters
// outside the polyline alphabet and a latitude without a matching longitude
// are reported as *DecodeError.
func DecodePolygon(encoded string) ([]Coordinate, error) {
	if len(encoded) == 0 {
		return []Coordinate{}, nil
	}

	points := make([]Coordinate, 0, len(encoded)/4+1)

	index := 0
	lat := 0
	lng := 0
	for index < len(encoded) {
		deltaLat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, &DecodeError{Offset: next, Reason: "latitude without longitude"}
		}
		deltaLng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next

		lat += deltaLat
		lng += deltaLng
		points = append(points, Coordinate{
			Lat: float64(lat) / polylinePrecision,
			Lng: float64(lng) / polylinePrecision,
		})
	}

	return points, nil
}

// decodeValue reads one zigzag varint starting at index and returns the
// signed delta with the index of the next unread byte.
func decodeValue(encoded string, index int) (int, int, error) {
	result := 0
	shift := 0
	for {
		if index >= len(encoded) {
			return 0, index, &DecodeError{Offset: index, Reason: "truncated value"}
		}
		c := encoded[index]
		if c < 63 || c > 126 {
			return 0, index, &DecodeError{Offset: index, Reason: fmt.Sprintf("unexpected character %q", c)}
		}
		if shift > 30 {
			return 0, index, &DecodeError{Offset: index, Reason: "value overflow"}
		}
		b := int(c) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Fix sign-bit inversion
	return (result >> 1) ^ (-(result & 1)), index, nil
}

// EncodePolygon encodes vertices with the same Polyline5 scheme DecodePolygon reads.
func EncodePolygon(points []Coordinate) string {
	if len(points) == 0 {
		return ""
	}

	result := make([]byte, 0, len(points)*6)
	prevLat := 0
	prevLng := 0
	for _, point := range points {
		lat := int(math.Round(point.Lat * polylinePrecision))
		lng := int(math.Round(point.Lng * polylinePrecision))

		result = appendSigned(result, lat-prevLat)
		result = appendSigned(result, lng-prevLng)

		prevLat = lat
		prevLng = lng
	}

	return string(result)
}

func appendSigned(buf []byte, value int) []byte {
	s := value << 1
	if value < 0 {
		s = ^s
	}

	for s >= 0x20 {
		buf = append(buf, byte((0x20|(s&0x1f))+63))
		s >>= 5
	}
	return append(buf, byte(s+63))
}
