package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/tripgomcp/pkg/format"
	"github.com/NERVsystems/tripgomcp/pkg/geo"
	"github.com/NERVsystems/tripgomcp/pkg/region"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
	"github.com/NERVsystems/tripgomcp/pkg/tz"
)

// Tool names.
const (
	ToolRouting    = "routing"
	ToolGetTripURL = "get-trip-url"
	ToolLocations  = "locations"
	ToolDepartures = "departures"
	ToolRegions    = "regions"
)

const (
	maxTripLimit         = 10
	maxWalkingMinutesCap = 120
)

// RoutingQueryEcho repeats the interpreted routing request back to the caller.
type RoutingQueryEcho struct {
	From              geo.Coordinate `json:"from"`
	To                geo.Coordinate `json:"to"`
	DepartAfter       string         `json:"departAfter,omitempty"`
	ArriveBefore      string         `json:"arriveBefore,omitempty"`
	Modes             []string       `json:"modes"`
	MaxWalkingMinutes *int           `json:"maxWalkingMinutes,omitempty"`
	Wheelchair        *bool          `json:"wheelchair,omitempty"`
	Limit             int            `json:"limit"`
}

// RoutingOutput is the JSON body of a routing result.
type RoutingOutput struct {
	Query    RoutingQueryEcho       `json:"query"`
	Timezone string                 `json:"timezone"`
	Region   string                 `json:"region,omitempty"`
	Trips    []format.FormattedTrip `json:"trips"`
}

// RoutingTool returns a tool definition for multimodal trip planning
func RoutingTool() mcp.Tool {
	return mcp.NewTool(ToolRouting,
		mcp.WithDescription("Plan trips between two points using public transport, cycling, driving, taxi and walking. "+
			"Returns the best alternatives with times in the local timezone of the origin."),
		mcp.WithNumber("fromLat",
			mcp.Required(),
			mcp.Description("Origin latitude"),
		),
		mcp.WithNumber("fromLng",
			mcp.Required(),
			mcp.Description("Origin longitude"),
		),
		mcp.WithNumber("toLat",
			mcp.Required(),
			mcp.Description("Destination latitude"),
		),
		mcp.WithNumber("toLng",
			mcp.Required(),
			mcp.Description("Destination longitude"),
		),
		mcp.WithString("departureTime",
			mcp.Description("Leave at or after this ISO-8601 time. Without an offset it is read as local time at the origin. Takes priority over arrivalTime."),
		),
		mcp.WithString("arrivalTime",
			mcp.Description("Arrive at or before this ISO-8601 time. Ignored when departureTime is set."),
		),
		mcp.WithArray("modes",
			mcp.Description("Transport modes to consider (default: all)"),
			mcp.Items(map[string]any{
				"type": "string",
				"enum": tripgo.ModeNames(),
			}),
		),
		mcp.WithNumber("maxWalkingMinutes",
			mcp.Description("Maximum walking time per trip in minutes"),
		),
		mcp.WithBoolean("wheelchair",
			mcp.Description("Only return wheelchair accessible trips"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of trip groups to return (default 3)"),
			mcp.DefaultNumber(format.DefaultTripLimit),
		),
	)
}

// routingParams is the validated form of a routing tool call.
type routingParams struct {
	from, to          geo.Coordinate
	departureTime     string
	arrivalTime       string
	modes             []tripgo.Mode
	maxWalkingMinutes *int
	wheelchair        *bool
	limit             int
}

func parseRoutingParams(req mcp.CallToolRequest) (routingParams, error) {
	var p routingParams
	var err error

	if p.from, err = requiredCoordinate(req, "fromLat", "fromLng"); err != nil {
		return p, err
	}
	if p.to, err = requiredCoordinate(req, "toLat", "toLng"); err != nil {
		return p, err
	}
	p.departureTime = optionalString(req, "departureTime")
	p.arrivalTime = optionalString(req, "arrivalTime")
	if p.modes, err = modesArg(req, "modes"); err != nil {
		return p, err
	}
	if p.maxWalkingMinutes, err = optionalInt(req, "maxWalkingMinutes", 0, maxWalkingMinutesCap); err != nil {
		return p, err
	}
	if p.wheelchair, err = optionalBool(req, "wheelchair"); err != nil {
		return p, err
	}
	if p.limit, err = intOrDefault(req, "limit", format.DefaultTripLimit, 1, maxTripLimit); err != nil {
		return p, err
	}
	return p, nil
}

// timeConstraint interprets the requested times in zone. departureTime wins
// when both are given.
func (p routingParams) timeConstraint(zone string) (tripgo.TimeConstraint, error) {
	switch {
	case p.departureTime != "":
		t, err := tz.ParseTimestamp(p.departureTime, zone)
		if err != nil {
			return tripgo.TimeConstraint{}, err
		}
		return tripgo.DepartAfter(t), nil
	case p.arrivalTime != "":
		t, err := tz.ParseTimestamp(p.arrivalTime, zone)
		if err != nil {
			return tripgo.TimeConstraint{}, err
		}
		return tripgo.ArriveBefore(t), nil
	default:
		return tripgo.TimeConstraint{}, nil
	}
}

// HandleRouting resolves the origin's region and timezone, then plans trips.
func (r *Registry) HandleRouting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger(ToolRouting)

	params, err := parseRoutingParams(req)
	if err != nil {
		logger.Warn("invalid parameters", "error", err)
		return errorResult(err), nil
	}

	regions, err := r.regions.Regions(ctx)
	if err != nil {
		logger.Error("failed to load regions", "error", err)
		return errorResult(err), nil
	}
	zone, matched, err := region.TimezoneFor(params.from, regions)
	if err != nil {
		logger.Error("failed to resolve region", "error", err)
		return errorResult(err), nil
	}
	if matched == nil {
		logger.Info("origin outside known regions, using default timezone", "origin", params.from.String(), "timezone", zone)
	}

	constraint, err := params.timeConstraint(zone)
	if err != nil {
		logger.Warn("invalid time", "error", err)
		return errorResult(err), nil
	}

	resp, err := r.planner.Routing(ctx, tripgo.RoutingQuery{
		From:              params.from,
		To:                params.to,
		Time:              constraint,
		Modes:             params.modes,
		MaxWalkingMinutes: params.maxWalkingMinutes,
		Wheelchair:        params.wheelchair,
	})
	if err != nil {
		logger.Error("routing request failed", "error", err)
		return errorResult(err), nil
	}

	trips, err := format.Trips(resp, params.limit, zone, logger)
	if err != nil {
		logger.Error("failed to format trips", "error", err)
		return errorResult(err), nil
	}

	output := RoutingOutput{
		Query:    echoQuery(params, constraint, zone),
		Timezone: zone,
		Trips:    trips,
	}
	if matched != nil {
		output.Region = matched.Name
	}

	text := format.TripsText(trips)
	if len(trips) == 0 {
		text += " " + GuidanceTripGoNoRoute
	} else {
		text = fmt.Sprintf("Times are shown in %s.\n%s", zone, text)
	}

	logger.Info("routing completed", "trips", len(trips), "timezone", zone)
	return result(logger, output, text), nil
}

func echoQuery(p routingParams, c tripgo.TimeConstraint, zone string) RoutingQueryEcho {
	modes := p.modes
	if len(modes) == 0 {
		modes = tripgo.AllModes
	}
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}

	echo := RoutingQueryEcho{
		From:              p.from,
		To:                p.to,
		Modes:             names,
		MaxWalkingMinutes: p.maxWalkingMinutes,
		Wheelchair:        p.wheelchair,
		Limit:             p.limit,
	}
	// format.Trips has already loaded zone, so formatting cannot fail here.
	switch c.Kind() {
	case tripgo.DepartAfterKind:
		echo.DepartAfter, _ = tz.FormatISOWithOffset(c.Time(), zone)
	case tripgo.ArriveBeforeKind:
		echo.ArriveBefore, _ = tz.FormatISOWithOffset(c.Time(), zone)
	}
	return echo
}
