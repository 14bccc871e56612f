package tripgo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NERVsystems/tripgomcp/pkg/geo"
)

// APIVersion is the routing response version requested from TripGo.
const APIVersion = "11"

// Mode is a caller-facing transport mode.
type Mode string

const (
	ModePublicTransit Mode = "public-transit"
	ModeCycling       Mode = "cycling"
	ModeDriving       Mode = "driving"
	ModeTaxi          Mode = "taxi"
	ModeWalking       Mode = "walking"
)

// modeIdentifiers maps caller modes to TripGo mode identifiers.
var modeIdentifiers = map[Mode]string{
	ModePublicTransit: "pt_pub",
	ModeCycling:       "cy_bic",
	ModeDriving:       "me_car",
	ModeTaxi:          "ps_tax",
	ModeWalking:       "wa_wal",
}

// AllModes lists every supported mode in a stable order.
var AllModes = []Mode{ModePublicTransit, ModeCycling, ModeDriving, ModeTaxi, ModeWalking}

// ParseMode validates a caller-supplied mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modeIdentifiers[m]; !ok {
		return "", fmt.Errorf("unknown mode %q (expected one of %s)", s, strings.Join(ModeNames(), ", "))
	}
	return m, nil
}

// ModeNames returns the names of AllModes.
func ModeNames() []string {
	names := make([]string, len(AllModes))
	for i, m := range AllModes {
		names[i] = string(m)
	}
	return names
}

// Identifier returns the TripGo mode identifier, e.g. "pt_pub".
func (m Mode) Identifier() string {
	return modeIdentifiers[m]
}

// TimeKind tags a TimeConstraint.
type TimeKind int

const (
	Unspecified TimeKind = iota
	DepartAfterKind
	ArriveBeforeKind
)

// TimeConstraint is either a departure lower bound, an arrival upper bound,
// or unspecified (the zero value). Only one can ever be set.
type TimeConstraint struct {
	kind TimeKind
	at   time.Time
}

// DepartAfter constrains trips to leave at or after t.
func DepartAfter(t time.Time) TimeConstraint {
	return TimeConstraint{kind: DepartAfterKind, at: t}
}

// ArriveBefore constrains trips to arrive at or before t.
func ArriveBefore(t time.Time) TimeConstraint {
	return TimeConstraint{kind: ArriveBeforeKind, at: t}
}

// Kind reports which constraint is set.
func (c TimeConstraint) Kind() TimeKind { return c.kind }

// Time returns the constraint instant; zero for Unspecified.
func (c TimeConstraint) Time() time.Time { return c.at }

// RoutingQuery describes one routing.json request.
type RoutingQuery struct {
	From              geo.Coordinate
	To                geo.Coordinate
	Time              TimeConstraint
	Modes             []Mode // empty means AllModes
	MaxWalkingMinutes *int
	Wheelchair        *bool
}

// Values encodes the query string for routing.json.
func (q RoutingQuery) Values() url.Values {
	v := url.Values{}
	v.Set("from", q.From.String())
	v.Set("to", q.To.String())

	switch q.Time.Kind() {
	case DepartAfterKind:
		v.Set("departAfter", strconv.FormatInt(q.Time.Time().Unix(), 10))
	case ArriveBeforeKind:
		v.Set("arriveBefore", strconv.FormatInt(q.Time.Time().Unix(), 10))
	}

	modes := q.Modes
	if len(modes) == 0 {
		modes = AllModes
	}
	for _, m := range modes {
		v.Add("modes", m.Identifier())
	}

	v.Set("v", APIVersion)
	if q.MaxWalkingMinutes != nil {
		v.Set("wm", strconv.Itoa(*q.MaxWalkingMinutes))
	}
	if q.Wheelchair != nil {
		if *q.Wheelchair {
			v.Set("wheelchair", "1")
		} else {
			v.Set("wheelchair", "0")
		}
	}
	return v
}

// LocationsQuery describes one locations.json request.
type LocationsQuery struct {
	Center geo.Coordinate
	Radius *int // meters
	Modes  []Mode
	Limit  *int
}

// Values encodes the query string for locations.json.
func (q LocationsQuery) Values() url.Values {
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(q.Center.Lat, 'f', -1, 64))
	v.Set("lng", strconv.FormatFloat(q.Center.Lng, 'f', -1, 64))
	if q.Radius != nil {
		v.Set("radius", strconv.Itoa(*q.Radius))
	}
	for _, m := range q.Modes {
		v.Add("modes", m.Identifier())
	}
	if q.Limit != nil {
		v.Set("limit", strconv.Itoa(*q.Limit))
	}
	return v
}

// DeparturesQuery describes one departures.json request.
type DeparturesQuery struct {
	Region    string
	StopCodes []string
	At        *time.Time
	Limit     int
}

// departuresBody is the JSON body POSTed to departures.json.
type departuresBody struct {
	Region           string   `json:"region"`
	EmbarkationStops []string `json:"embarkationStops"`
	TimeStamp        *int64   `json:"timeStamp,omitempty"`
	Limit            int      `json:"limit"`
}

func (q DeparturesQuery) body() departuresBody {
	b := departuresBody{
		Region:           q.Region,
		EmbarkationStops: q.StopCodes,
		Limit:            q.Limit,
	}
	if q.At != nil {
		ts := q.At.Unix()
		b.TimeStamp = &ts
	}
	return b
}
