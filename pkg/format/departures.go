package format

import (
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
	"github.com/NERVsystems/tripgomcp/pkg/tz"
)

// DepartureEntry is one flattened departure with its realtime overlay.
type DepartureEntry struct {
	StopCode          string  `json:"stopCode"`
	StopName          *string `json:"stopName,omitempty"`
	ServiceName       *string `json:"serviceName,omitempty"`
	ServiceNumber     *string `json:"serviceNumber,omitempty"`
	ServiceDirection  *string `json:"serviceDirection,omitempty"`
	ServiceTripID     *string `json:"serviceTripID,omitempty"`
	Operator          *string `json:"operator,omitempty"`
	Mode              *string `json:"mode,omitempty"`
	Departure         *string `json:"departure,omitempty"`
	Arrival           *string `json:"arrival,omitempty"`
	RealtimeDeparture *string `json:"realtimeDeparture,omitempty"`
	RealtimeArrival   *string `json:"realtimeArrival,omitempty"`
	RealTimeStatus    *string `json:"realTimeStatus,omitempty"`
	DelayMinutes      *int64  `json:"delayMinutes,omitempty"`
	Frequency         *int    `json:"frequency,omitempty"`
}

// Departures flattens a departures response, embarkation stop by embarkation
// stop, then service by service. Times are rendered in zone, or UTC when zone
// is empty. A positive limit truncates the flattened list.
//
// Stop names come from the response's stops and parent stops, including their
// children. A stop code with no matching stop leaves StopName absent.
func Departures(resp *tripgo.DeparturesResponse, zone string, limit int) ([]DepartureEntry, error) {
	if zone == "" {
		zone = tz.UTC
	}
	if _, err := tz.Load(zone); err != nil {
		return nil, err
	}
	if resp == nil {
		return []DepartureEntry{}, nil
	}
	if resp.Error != "" {
		return nil, &tripgo.UpstreamError{
			Endpoint:  tripgo.EndpointDepartures,
			Code:      resp.ErrorCode,
			UserError: resp.UserError,
			Message:   resp.Error,
		}
	}

	names := make(map[string]string)
	indexStopNames(names, resp.Stops)
	indexStopNames(names, resp.ParentStops)

	entries := []DepartureEntry{}
	for _, embark := range resp.EmbarkationStops {
		var stopName *string
		if name, ok := names[embark.StopCode]; ok {
			stopName = &name
		}
		for _, svc := range embark.Services {
			if limit > 0 && len(entries) >= limit {
				return entries, nil
			}
			entry, err := departureEntry(embark.StopCode, stopName, svc, zone)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// indexStopNames records stop names by code. The first name seen for a code wins.
func indexStopNames(names map[string]string, stops []tripgo.Stop) {
	for _, stop := range stops {
		if stop.Name != nil {
			if _, seen := names[stop.Code]; !seen {
				names[stop.Code] = *stop.Name
			}
		}
		indexStopNames(names, stop.Children)
	}
}

func departureEntry(stopCode string, stopName *string, svc tripgo.Service, zone string) (DepartureEntry, error) {
	entry := DepartureEntry{
		StopCode:         stopCode,
		StopName:         stopName,
		ServiceName:      svc.ServiceName,
		ServiceNumber:    svc.ServiceNumber,
		ServiceDirection: svc.ServiceDirection,
		ServiceTripID:    svc.ServiceTripID,
		Operator:         svc.Operator,
		RealTimeStatus:   svc.RealTimeStatus,
		Frequency:        svc.Frequency,
	}
	if svc.ModeInfo != nil {
		label := modeLabel(svc.ModeInfo, nil)
		entry.Mode = &label
	}

	var err error
	if entry.Departure, err = formatOptional(svc.StartTime, zone); err != nil {
		return DepartureEntry{}, err
	}
	if entry.Arrival, err = formatOptional(svc.EndTime, zone); err != nil {
		return DepartureEntry{}, err
	}
	if entry.RealtimeDeparture, err = formatOptional(svc.RealtimeDeparture, zone); err != nil {
		return DepartureEntry{}, err
	}
	if entry.RealtimeArrival, err = formatOptional(svc.RealtimeArrival, zone); err != nil {
		return DepartureEntry{}, err
	}

	if svc.StartTime != nil && svc.RealtimeDeparture != nil {
		delay := minutesBetween(*svc.StartTime, *svc.RealtimeDeparture)
		entry.DelayMinutes = &delay
	}
	return entry, nil
}

func formatOptional(sec *int64, zone string) (*string, error) {
	if sec == nil {
		return nil, nil
	}
	s, err := tz.FormatUnix(*sec, zone)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
