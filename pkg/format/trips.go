// Package format reshapes TripGo responses into compact, agent-facing
// structures and their text renderings.
package format

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
	"github.com/NERVsystems/tripgomcp/pkg/tz"
)

// UnknownMode labels a segment whose template could not be resolved.
const UnknownMode = "Unknown Mode"

const (
	// DefaultTripLimit is the number of trip groups kept when no limit is given.
	DefaultTripLimit = 3

	// tripsPerGroup is the number of alternatives kept from each group.
	tripsPerGroup = 2
)

// Cost is a trip's monetary cost.
type Cost struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Symbol   string  `json:"symbol,omitempty"`
}

// Endpoint is where a segment starts or ends.
type Endpoint struct {
	Name    string  `json:"name,omitempty"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// FormattedSegment is one leg of a FormattedTrip.
type FormattedSegment struct {
	Mode            string    `json:"mode"`
	From            *Endpoint `json:"from,omitempty"`
	To              *Endpoint `json:"to,omitempty"`
	Action          *string   `json:"action,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	ServiceName     *string   `json:"serviceName,omitempty"`
	ServiceNumber   *string   `json:"serviceNumber,omitempty"`
	Start           string    `json:"start"`
	End             string    `json:"end"`
	DurationMinutes int64     `json:"durationMinutes"`
	RealTime        *bool     `json:"realTime,omitempty"`
}

// FormattedTrip is one itinerary as returned to the caller.
type FormattedTrip struct {
	Depart          string             `json:"depart"`
	Arrive          string             `json:"arrive"`
	DurationMinutes int64              `json:"durationMinutes"`
	Score           float64            `json:"score"`
	Modes           []string           `json:"modes"`
	Segments        []FormattedSegment `json:"segments"`
	Cost            *Cost              `json:"cost,omitempty"`
	Calories        *float64           `json:"calories,omitempty"`
	CarbonKg        *float64           `json:"carbonKg,omitempty"`
	Hassle          *float64           `json:"hassle,omitempty"`
	SaveURL         *string            `json:"saveURL,omitempty"`
	ShareURL        *string            `json:"shareURL,omitempty"`
}

// templateIndex maps a segment template hash code to its template. It is
// built once per response and only read afterwards.
type templateIndex map[int64]*tripgo.SegmentTemplate

func indexTemplates(templates []tripgo.SegmentTemplate) templateIndex {
	index := make(templateIndex, len(templates))
	for i := range templates {
		index[templates[i].HashCode] = &templates[i]
	}
	return index
}

// Trips selects the best trips of a routing response and formats them with
// times rendered in zone.
//
// Within each group trips are ordered by weighted score and the best two are
// kept. Groups are then ordered by their best trip's score and the first
// limit groups are kept (DefaultTripLimit when limit <= 0). The result is
// flattened in group order.
func Trips(resp *tripgo.RoutingResponse, limit int, zone string, logger *slog.Logger) ([]FormattedTrip, error) {
	if resp == nil {
		return []FormattedTrip{}, nil
	}
	if resp.Error != "" {
		return nil, &tripgo.UpstreamError{
			Endpoint:  tripgo.EndpointRouting,
			Code:      resp.ErrorCode,
			UserError: resp.UserError,
			Message:   resp.Error,
		}
	}
	if _, err := tz.Load(zone); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	index := indexTemplates(resp.SegmentTemplates)
	selected := selectTrips(resp.Groups, limit, logger)

	trips := make([]FormattedTrip, 0, len(selected))
	for _, trip := range selected {
		ft, err := formatTrip(trip, index, zone)
		if err != nil {
			return nil, err
		}
		trips = append(trips, ft)
	}
	return trips, nil
}

type rankedGroup struct {
	trips []tripgo.Trip
	score float64
}

func byScore(a, b tripgo.Trip) int {
	return cmp.Compare(a.WeightedScore, b.WeightedScore)
}

func selectTrips(groups []tripgo.TripGroup, limit int, logger *slog.Logger) []tripgo.Trip {
	if limit <= 0 {
		limit = DefaultTripLimit
	}

	ranked := make([]rankedGroup, 0, len(groups))
	for i, group := range groups {
		if len(group.Trips) == 0 {
			logger.Warn("skipping trip group without trips", "group", i)
			continue
		}
		trips := slices.Clone(group.Trips)
		slices.SortStableFunc(trips, byScore)
		if len(trips) > tripsPerGroup {
			trips = trips[:tripsPerGroup]
		}
		ranked = append(ranked, rankedGroup{trips: trips, score: trips[0].WeightedScore})
	}

	slices.SortStableFunc(ranked, func(a, b rankedGroup) int {
		return cmp.Compare(a.score, b.score)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	var selected []tripgo.Trip
	for _, g := range ranked {
		selected = append(selected, g.trips...)
	}
	return selected
}

func formatTrip(trip tripgo.Trip, index templateIndex, zone string) (FormattedTrip, error) {
	depart, err := tz.FormatUnix(trip.Depart, zone)
	if err != nil {
		return FormattedTrip{}, err
	}
	arrive, err := tz.FormatUnix(trip.Arrive, zone)
	if err != nil {
		return FormattedTrip{}, err
	}

	ft := FormattedTrip{
		Depart:          depart,
		Arrive:          arrive,
		DurationMinutes: minutesBetween(trip.Depart, trip.Arrive),
		Score:           trip.WeightedScore,
		Modes:           []string{},
		Segments:        make([]FormattedSegment, 0, len(trip.Segments)),
		Calories:        trip.CaloriesCost,
		CarbonKg:        trip.CarbonCost,
		Hassle:          trip.HassleCost,
		SaveURL:         trip.SaveURL,
		ShareURL:        trip.ShareURL,
	}
	if trip.MoneyCost != nil {
		ft.Cost = &Cost{
			Amount:   *trip.MoneyCost,
			Currency: deref(trip.MoneyCostCurrency),
			Symbol:   deref(trip.CurrencySymbol),
		}
	}

	for _, ref := range trip.Segments {
		seg, err := formatSegment(ref, index, zone)
		if err != nil {
			return FormattedTrip{}, err
		}
		if !slices.Contains(ft.Modes, seg.Mode) {
			ft.Modes = append(ft.Modes, seg.Mode)
		}
		ft.Segments = append(ft.Segments, seg)
	}
	return ft, nil
}

func formatSegment(ref tripgo.SegmentReference, index templateIndex, zone string) (FormattedSegment, error) {
	start, err := tz.FormatUnix(ref.StartTime, zone)
	if err != nil {
		return FormattedSegment{}, err
	}
	end, err := tz.FormatUnix(ref.EndTime, zone)
	if err != nil {
		return FormattedSegment{}, err
	}

	seg := FormattedSegment{
		Mode:            UnknownMode,
		Start:           start,
		End:             end,
		DurationMinutes: minutesBetween(ref.StartTime, ref.EndTime),
		RealTime:        ref.RealTime,
	}

	tmpl, ok := index[ref.SegmentTemplateHashCode]
	if !ok {
		return seg, nil
	}
	seg.Mode = modeLabel(tmpl.ModeInfo, tmpl.Mode)
	seg.From = endpoint(tmpl.From)
	seg.To = endpoint(tmpl.To)
	seg.Action = tmpl.Action
	seg.Notes = tmpl.Notes
	seg.ServiceName = tmpl.ServiceName
	seg.ServiceNumber = tmpl.ServiceNumber
	return seg, nil
}

// minutesBetween returns whole minutes from start to end, truncated toward zero.
func minutesBetween(start, end int64) int64 {
	return (end - start) / 60
}

// modeLabel picks the most readable name for a mode.
func modeLabel(info *tripgo.ModeInfo, mode *string) string {
	if info != nil {
		if info.Alt != "" {
			return info.Alt
		}
		if d := deref(info.Description); d != "" {
			return d
		}
	}
	if m := deref(mode); m != "" {
		return m
	}
	return UnknownMode
}

func endpoint(p *tripgo.Place) *Endpoint {
	if p == nil {
		return nil
	}
	return &Endpoint{
		Name:    deref(p.Name),
		Address: deref(p.Address),
		Lat:     p.Lat,
		Lng:     p.Lng,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func formatCost(c *Cost) string {
	if c.Symbol != "" {
		return fmt.Sprintf("%s%.2f", c.Symbol, c.Amount)
	}
	if c.Currency != "" {
		return fmt.Sprintf("%.2f %s", c.Amount, c.Currency)
	}
	return fmt.Sprintf("%.2f", c.Amount)
}
