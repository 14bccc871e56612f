package geo

import (
	"errors"
	"testing"
)

// All test cases use 5 decimal places of precision (1e-5) for coordinates.
func TestDecodePolygon(t *testing.T) {
	testCases := []struct {
		name     string
		encoded  string
		expected []Coordinate
	}{
		{
			name:     "Empty string",
			encoded:  "",
			expected: []Coordinate{},
		},
		{
			name:    "Single point",
			encoded: "_p~iF~ps|U",
			expected: []Coordinate{
				{Lat: 38.5, Lng: -120.2},
			},
		},
		{
			name:    "Multiple points",
			encoded: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
			expected: []Coordinate{
				{Lat: 38.5, Lng: -120.2},
				{Lat: 40.7, Lng: -120.95},
				{Lat: 43.252, Lng: -126.453},
			},
		},
		{
			name:    "Negative coordinates",
			encoded: "f{xyCwuy~W",
			expected: []Coordinate{
				{Lat: -25.36388, Lng: 131.04492},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := DecodePolygon(tc.encoded)
			if err != nil {
				t.Fatalf("DecodePolygon(%q) error = %v", tc.encoded, err)
			}
			if len(result) != len(tc.expected) {
				t.Fatalf("Expected %d points, got %d", len(tc.expected), len(result))
			}
			for i, expected := range tc.expected {
				if !almostEqual(result[i].Lat, expected.Lat, 0.00001) ||
					!almostEqual(result[i].Lng, expected.Lng, 0.00001) {
					t.Errorf("Point %d: expected %v, got %v", i, expected, result[i])
				}
			}
		})
	}
}

func TestDecodePolygonMalformed(t *testing.T) {
	testCases := []struct {
		name    string
		encoded string
		offset  int
	}{
		{name: "Truncated longitude", encoded: "_p~iF~ps|", offset: 9},
		{name: "Latitude without longitude", encoded: "_p~iF", offset: 5},
		{name: "Character below alphabet", encoded: "_p~iF ps|U", offset: 5},
		{name: "Unterminated value", encoded: "~~~~~~~~~~", offset: 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodePolygon(tc.encoded)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("DecodePolygon(%q) error = %v, want *DecodeError", tc.encoded, err)
			}
			if decodeErr.Offset != tc.offset {
				t.Errorf("DecodeError.Offset = %d, want %d (%s)", decodeErr.Offset, tc.offset, decodeErr.Reason)
			}
		})
	}
}

func TestEncodePolygon(t *testing.T) {
	testCases := []struct {
		name     string
		points   []Coordinate
		expected string
	}{
		{name: "Empty slice", points: []Coordinate{}, expected: ""},
		{name: "Single point", points: []Coordinate{{Lat: 38.5, Lng: -120.2}}, expected: "_p~iF~ps|U"},
		{
			name: "Multiple points",
			points: []Coordinate{
				{Lat: 38.5, Lng: -120.2},
				{Lat: 40.7, Lng: -120.95},
				{Lat: 43.252, Lng: -126.453},
			},
			expected: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := EncodePolygon(tc.points); result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestPolygonRoundTrip(t *testing.T) {
	points := []Coordinate{
		{Lat: -33.7, Lng: 150.9},
		{Lat: -33.7, Lng: 151.4},
		{Lat: -34.1, Lng: 151.4},
		{Lat: -34.1, Lng: 150.9},
	}

	decoded, err := DecodePolygon(EncodePolygon(points))
	if err != nil {
		t.Fatalf("DecodePolygon error = %v", err)
	}
	if len(decoded) != len(points) {
		t.Fatalf("Round trip length mismatch: original %d, result %d", len(points), len(decoded))
	}
	for i, original := range points {
		if !almostEqual(decoded[i].Lat, original.Lat, 0.00001) ||
			!almostEqual(decoded[i].Lng, original.Lng, 0.00001) {
			t.Errorf("Point %d mismatch after round trip: original %v, result %v", i, original, decoded[i])
		}
	}
}

// almostEqual checks if two float64 values are equal within a tolerance.
func almostEqual(a, b, tolerance float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
