package format

import (
	"fmt"
	"strings"
)

// TripsText renders trips as a numbered plain-text itinerary list.
func TripsText(trips []FormattedTrip) string {
	if len(trips) == 0 {
		return "No trips found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d trip option(s):\n", len(trips))
	for i, trip := range trips {
		fmt.Fprintf(&b, "\nOption %d: %s -> %s (%d min)\n", i+1, trip.Depart, trip.Arrive, trip.DurationMinutes)
		if len(trip.Modes) > 0 {
			fmt.Fprintf(&b, "  Modes: %s\n", strings.Join(trip.Modes, ", "))
		}
		if trip.Cost != nil {
			fmt.Fprintf(&b, "  Cost: %s\n", formatCost(trip.Cost))
		}
		if trip.CarbonKg != nil {
			fmt.Fprintf(&b, "  Carbon: %.2f kg\n", *trip.CarbonKg)
		}
		if trip.Calories != nil {
			fmt.Fprintf(&b, "  Calories: %.0f\n", *trip.Calories)
		}
		for j, seg := range trip.Segments {
			fmt.Fprintf(&b, "  %d. %s", j+1, seg.Mode)
			if seg.ServiceNumber != nil {
				fmt.Fprintf(&b, " %s", *seg.ServiceNumber)
			}
			if seg.Action != nil {
				fmt.Fprintf(&b, ": %s", *seg.Action)
			}
			fmt.Fprintf(&b, " (%d min)\n", seg.DurationMinutes)
		}
		if trip.SaveURL != nil {
			fmt.Fprintf(&b, "  Trip URL: %s\n", *trip.SaveURL)
		}
	}
	return b.String()
}

// LocationsText renders a location list grouped by category counts.
func LocationsText(list *LocationList) string {
	if list == nil || list.Total == 0 {
		return "No locations found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d location(s)", list.Total)
	if len(list.Locations) < list.Total {
		fmt.Fprintf(&b, ", showing %d", len(list.Locations))
	}
	b.WriteString(":\n")

	var counts []string
	for _, c := range Categories {
		if n := list.Counts[c]; n > 0 {
			counts = append(counts, fmt.Sprintf("%s %d", c, n))
		}
	}
	fmt.Fprintf(&b, "  %s\n", strings.Join(counts, ", "))

	for _, loc := range list.Locations {
		name := deref(loc.Name)
		if name == "" {
			name = deref(loc.Address)
		}
		if name == "" {
			name = fmt.Sprintf("(%.5f, %.5f)", loc.Lat, loc.Lng)
		}
		fmt.Fprintf(&b, "- [%s] %s, %.0f m", loc.Type, name, loc.DistanceMeters)
		if loc.Code != nil {
			fmt.Fprintf(&b, " (code %s)", *loc.Code)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DeparturesText renders departures one per line.
func DeparturesText(entries []DepartureEntry) string {
	if len(entries) == 0 {
		return "No departures found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d departure(s):\n", len(entries))
	for _, d := range entries {
		when := deref(d.RealtimeDeparture)
		if when == "" {
			when = deref(d.Departure)
		}
		if when == "" {
			when = "time unknown"
		}

		stop := d.StopCode
		if d.StopName != nil {
			stop = fmt.Sprintf("%s (%s)", *d.StopName, d.StopCode)
		}

		service := strings.TrimSpace(deref(d.ServiceNumber) + " " + deref(d.ServiceName))
		if service == "" {
			service = deref(d.Mode)
		}

		fmt.Fprintf(&b, "- %s %s from %s", when, service, stop)
		if d.ServiceDirection != nil {
			fmt.Fprintf(&b, " towards %s", *d.ServiceDirection)
		}
		if d.DelayMinutes != nil && *d.DelayMinutes != 0 {
			fmt.Fprintf(&b, " [%+d min]", *d.DelayMinutes)
		}
		b.WriteString("\n")
	}
	return b.String()
}
