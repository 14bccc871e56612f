package tripgo

import "github.com/NERVsystems/tripgomcp/pkg/region"

// Optional upstream fields are pointers so that an absent field and a
// present zero value stay distinguishable after decoding.

// Status carries the error fields TripGo adds to any failed response.
type Status struct {
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"errorCode,omitempty"`
	UserError bool   `json:"usererror,omitempty"`
}

func (s *Status) status() *Status { return s }

// RegionsResponse is the body of regions.json.
type RegionsResponse struct {
	Status
	Regions []region.Region `json:"regions"`
}

// RoutingResponse is the body of routing.json.
type RoutingResponse struct {
	Status
	Groups           []TripGroup       `json:"groups"`
	SegmentTemplates []SegmentTemplate `json:"segmentTemplates"`
}

// TripGroup holds interchangeable alternatives for one conceptual journey.
type TripGroup struct {
	Trips     []Trip `json:"trips"`
	Frequency *int   `json:"frequency,omitempty"`
}

// Trip is one concrete itinerary. Depart and Arrive are epoch seconds.
type Trip struct {
	Depart            int64              `json:"depart"`
	Arrive            int64              `json:"arrive"`
	WeightedScore     float64            `json:"weightedScore"`
	Segments          []SegmentReference `json:"segments"`
	MoneyCost         *float64           `json:"moneyCost,omitempty"`
	MoneyCostCurrency *string            `json:"moneyCostCurrency,omitempty"`
	CurrencySymbol    *string            `json:"currencySymbol,omitempty"`
	CaloriesCost      *float64           `json:"caloriesCost,omitempty"`
	CarbonCost        *float64           `json:"carbonCost,omitempty"`
	HassleCost        *float64           `json:"hassleCost,omitempty"`
	SaveURL           *string            `json:"saveURL,omitempty"`
	UpdateURL         *string            `json:"updateURL,omitempty"`
	ShareURL          *string            `json:"shareURL,omitempty"`
}

// SegmentReference is the time-bounded, per-trip use of a SegmentTemplate.
type SegmentReference struct {
	StartTime               int64   `json:"startTime"`
	EndTime                 int64   `json:"endTime"`
	SegmentTemplateHashCode int64   `json:"segmentTemplateHashCode"`
	RealTime                *bool   `json:"realTime,omitempty"`
	ServiceTripID           *string `json:"serviceTripID,omitempty"`
}

// SegmentTemplate describes one kind of travel segment shared by many references.
type SegmentTemplate struct {
	HashCode         int64     `json:"hashCode"`
	Type             *string   `json:"type,omitempty"`
	Mode             *string   `json:"mode,omitempty"`
	ModeInfo         *ModeInfo `json:"modeInfo,omitempty"`
	Action           *string   `json:"action,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	From             *Place    `json:"from,omitempty"`
	To               *Place    `json:"to,omitempty"`
	ServiceName      *string   `json:"serviceName,omitempty"`
	ServiceNumber    *string   `json:"serviceNumber,omitempty"`
	ServiceDirection *string   `json:"serviceDirection,omitempty"`
	Metres           *float64  `json:"metres,omitempty"`
}

// ModeInfo is TripGo's display description of a transport mode.
type ModeInfo struct {
	Alt         string  `json:"alt"`
	Identifier  *string `json:"identifier,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Place is a segment endpoint.
type Place struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address *string `json:"address,omitempty"`
	Name    *string `json:"name,omitempty"`
}

// LocationsResponse is the body of locations.json.
type LocationsResponse struct {
	Status
	Groups []LocationGroup `json:"groups"`
}

// LocationGroup holds one upstream cell of locations, split by category.
type LocationGroup struct {
	Key             string     `json:"key,omitempty"`
	Stops           []Location `json:"stops,omitempty"`
	BikePods        []Location `json:"bikePods,omitempty"`
	CarPods         []Location `json:"carPods,omitempty"`
	CarParks        []Location `json:"carParks,omitempty"`
	CarRentals      []Location `json:"carRentals,omitempty"`
	Facilities      []Location `json:"facilities,omitempty"`
	FreeFloating    []Location `json:"freeFloating,omitempty"`
	OnStreetParking []Location `json:"onStreetParking,omitempty"`
}

// Location is any point of interest returned by locations.json.
type Location struct {
	Code                 *string   `json:"code,omitempty"`
	Identifier           *string   `json:"identifier,omitempty"`
	Name                 *string   `json:"name,omitempty"`
	Address              *string   `json:"address,omitempty"`
	Lat                  float64   `json:"lat"`
	Lng                  float64   `json:"lng"`
	Class                *string   `json:"class,omitempty"`
	StopType             *string   `json:"stopType,omitempty"`
	Services             *string   `json:"services,omitempty"`
	WheelchairAccessible *bool     `json:"wheelchairAccessible,omitempty"`
	ModeInfo             *ModeInfo `json:"modeInfo,omitempty"`
}

// DeparturesResponse is the body of departures.json.
type DeparturesResponse struct {
	Status
	EmbarkationStops []EmbarkationStop `json:"embarkationStops"`
	Stops            []Stop            `json:"stops,omitempty"`
	ParentStops      []Stop            `json:"parentStops,omitempty"`
}

// EmbarkationStop groups the services departing one stop.
type EmbarkationStop struct {
	StopCode string    `json:"stopCode"`
	Services []Service `json:"services"`
}

// Service is one scheduled departure with optional realtime overlay.
type Service struct {
	ServiceName       *string   `json:"serviceName,omitempty"`
	ServiceNumber     *string   `json:"serviceNumber,omitempty"`
	ServiceDirection  *string   `json:"serviceDirection,omitempty"`
	ServiceTripID     *string   `json:"serviceTripID,omitempty"`
	Operator          *string   `json:"operator,omitempty"`
	ModeInfo          *ModeInfo `json:"modeInfo,omitempty"`
	StartTime         *int64    `json:"startTime,omitempty"`
	EndTime           *int64    `json:"endTime,omitempty"`
	RealtimeDeparture *int64    `json:"realtimeDeparture,omitempty"`
	RealtimeArrival   *int64    `json:"realtimeArrival,omitempty"`
	RealTimeStatus    *string   `json:"realTimeStatus,omitempty"`
	Frequency         *int      `json:"frequency,omitempty"`
}

// Stop is a stop record used to name embarkation stops.
type Stop struct {
	Code     string  `json:"code"`
	Name     *string `json:"name,omitempty"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Children []Stop  `json:"children,omitempty"`
}

// SaveTripResponse is the body returned by a trip's save URL.
type SaveTripResponse struct {
	Status
	URL string `json:"url"`
}
