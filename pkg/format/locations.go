package format

import (
	"github.com/NERVsystems/tripgomcp/pkg/geo"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
)

// Location categories, in the order they are flattened.
const (
	CategoryStops           = "stops"
	CategoryBikePods        = "bikePods"
	CategoryCarPods         = "carPods"
	CategoryCarParks        = "carParks"
	CategoryCarRentals      = "carRentals"
	CategoryFacilities      = "facilities"
	CategoryFreeFloating    = "freeFloating"
	CategoryOnStreetParking = "onStreetParking"
)

// Categories lists every location category in flattening order.
var Categories = []string{
	CategoryStops,
	CategoryBikePods,
	CategoryCarPods,
	CategoryCarParks,
	CategoryCarRentals,
	CategoryFacilities,
	CategoryFreeFloating,
	CategoryOnStreetParking,
}

// LocationEntry is one flattened location. Type names its category.
type LocationEntry struct {
	Type                 string  `json:"type"`
	Code                 *string `json:"code,omitempty"`
	Name                 *string `json:"name,omitempty"`
	Address              *string `json:"address,omitempty"`
	Lat                  float64 `json:"lat"`
	Lng                  float64 `json:"lng"`
	DistanceMeters       float64 `json:"distanceMeters"`
	Mode                 *string `json:"mode,omitempty"`
	StopType             *string `json:"stopType,omitempty"`
	Services             *string `json:"services,omitempty"`
	WheelchairAccessible *bool   `json:"wheelchairAccessible,omitempty"`
}

// LocationList is the flattened result of a locations query. Counts holds
// every category, including empty ones, and reflects the upstream totals
// before any limit is applied.
type LocationList struct {
	Locations []LocationEntry `json:"locations"`
	Counts    map[string]int  `json:"counts"`
	Total     int             `json:"total"`
}

// Locations flattens a locations response category by category, then item by
// item, in upstream order. A positive limit truncates the flattened list.
func Locations(resp *tripgo.LocationsResponse, center geo.Coordinate, limit int) (*LocationList, error) {
	list := &LocationList{
		Locations: []LocationEntry{},
		Counts:    make(map[string]int, len(Categories)),
	}
	for _, c := range Categories {
		list.Counts[c] = 0
	}
	if resp == nil {
		return list, nil
	}
	if resp.Error != "" {
		return nil, &tripgo.UpstreamError{
			Endpoint:  tripgo.EndpointLocations,
			Code:      resp.ErrorCode,
			UserError: resp.UserError,
			Message:   resp.Error,
		}
	}

	// Categories first so that stops from every group precede bike pods.
	for i, category := range Categories {
		for _, group := range resp.Groups {
			for _, loc := range categorySlices(group)[i] {
				list.Counts[category]++
				list.Total++
				if limit > 0 && len(list.Locations) >= limit {
					continue
				}
				list.Locations = append(list.Locations, locationEntry(category, loc, center))
			}
		}
	}
	return list, nil
}

// categorySlices returns a group's locations indexed like Categories.
func categorySlices(g tripgo.LocationGroup) [][]tripgo.Location {
	return [][]tripgo.Location{
		g.Stops,
		g.BikePods,
		g.CarPods,
		g.CarParks,
		g.CarRentals,
		g.Facilities,
		g.FreeFloating,
		g.OnStreetParking,
	}
}

func locationEntry(category string, loc tripgo.Location, center geo.Coordinate) LocationEntry {
	entry := LocationEntry{
		Type:                 category,
		Code:                 loc.Code,
		Name:                 loc.Name,
		Address:              loc.Address,
		Lat:                  loc.Lat,
		Lng:                  loc.Lng,
		DistanceMeters:       geo.Distance(center, geo.Coordinate{Lat: loc.Lat, Lng: loc.Lng}),
		StopType:             loc.StopType,
		Services:             loc.Services,
		WheelchairAccessible: loc.WheelchairAccessible,
	}
	if entry.Code == nil {
		entry.Code = loc.Identifier
	}
	if loc.ModeInfo != nil {
		label := modeLabel(loc.ModeInfo, nil)
		entry.Mode = &label
	}
	return entry
}
