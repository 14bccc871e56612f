// Package region resolves which upstream coverage region, and therefore which
// timezone, a coordinate belongs to.
package region

import (
	"fmt"

	"github.com/NERVsystems/tripgomcp/pkg/geo"
	"github.com/NERVsystems/tripgomcp/pkg/tz"
)

// DefaultTimezone is used when no region contains a coordinate.
const DefaultTimezone = tz.UTC

// City is a named place inside a region.
type City struct {
	Title string  `json:"title"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Region is a named coverage area with its boundary and timezone.
type Region struct {
	Name     string   `json:"name"`
	Polygon  string   `json:"polygon"` // Polyline5 encoded boundary
	Timezone string   `json:"timezone"`
	Cities   []City   `json:"cities,omitempty"`
	Modes    []string `json:"modes,omitempty"`
}

// Resolve returns the first region, in list order, whose polygon contains c.
// It returns nil without error when no region matches. A malformed polygon
// aborts the lookup with a *geo.DecodeError.
func Resolve(c geo.Coordinate, regions []Region) (*Region, error) {
	for i := range regions {
		inside, err := geo.ContainsEncoded(c, regions[i].Polygon)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", regions[i].Name, err)
		}
		if inside {
			return &regions[i], nil
		}
	}
	return nil, nil
}

// TimezoneFor returns the timezone of the region containing c, or
// DefaultTimezone with a nil region when none does.
func TimezoneFor(c geo.Coordinate, regions []Region) (string, *Region, error) {
	r, err := Resolve(c, regions)
	if err != nil {
		return "", nil, err
	}
	if r == nil || r.Timezone == "" {
		return DefaultTimezone, r, nil
	}
	return r.Timezone, r, nil
}

// Find returns the region with the given name, or nil.
func Find(name string, regions []Region) *Region {
	for i := range regions {
		if regions[i].Name == name {
			return &regions[i]
		}
	}
	return nil
}
