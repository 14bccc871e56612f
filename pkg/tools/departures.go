package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/tripgomcp/pkg/format"
	"github.com/NERVsystems/tripgomcp/pkg/region"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
	"github.com/NERVsystems/tripgomcp/pkg/tz"
)

const (
	defaultDeparturesLimit = 10
	maxDeparturesLimit     = 100
	maxStopCodes           = 20
)

// DeparturesOutput is the JSON body of a departures result.
type DeparturesOutput struct {
	Region     string                  `json:"region"`
	Timezone   string                  `json:"timezone"`
	Departures []format.DepartureEntry `json:"departures"`
}

// DeparturesTool returns a tool definition for stop departure boards
func DeparturesTool() mcp.Tool {
	return mcp.NewTool(ToolDepartures,
		mcp.WithDescription("List upcoming departures, with realtime information where available, from one or more stops"),
		mcp.WithString("region",
			mcp.Required(),
			mcp.Description("Region code, e.g. AU_NSW_Sydney (see the regions tool)"),
		),
		mcp.WithArray("stopCodes",
			mcp.Required(),
			mcp.Description("Stop codes from the locations tool"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("timestamp",
			mcp.Description("List departures after this ISO-8601 time (default: now)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of departures to return (default 10)"),
			mcp.DefaultNumber(defaultDeparturesLimit),
		),
	)
}

// HandleDepartures lists departures from the requested stops. Times are
// shown in the region's timezone when the region list is already cached,
// otherwise in UTC, so the call never costs more than one upstream request.
func (r *Registry) HandleDepartures(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger(ToolDepartures)

	regionName := optionalString(req, "region")
	if regionName == "" {
		return errorResult(invalid("region", "is required")), nil
	}
	stopCodes, err := stringList(req, "stopCodes")
	if err != nil {
		return errorResult(err), nil
	}
	if len(stopCodes) == 0 {
		return errorResult(invalid("stopCodes", "at least one stop code is required")), nil
	}
	if len(stopCodes) > maxStopCodes {
		return errorResult(invalid("stopCodes", "at most %d stop codes are allowed", maxStopCodes)), nil
	}
	limit, err := intOrDefault(req, "limit", defaultDeparturesLimit, 1, maxDeparturesLimit)
	if err != nil {
		return errorResult(err), nil
	}

	zone := r.cachedTimezone(regionName)

	query := tripgo.DeparturesQuery{
		Region:    regionName,
		StopCodes: stopCodes,
		Limit:     limit,
	}
	if ts := optionalString(req, "timestamp"); ts != "" {
		at, err := tz.ParseTimestamp(ts, zone)
		if err != nil {
			return errorResult(err), nil
		}
		query.At = &at
	}

	resp, err := r.planner.Departures(ctx, query)
	if err != nil {
		logger.Error("departures request failed", "error", err)
		return errorResult(err), nil
	}

	entries, err := format.Departures(resp, zone, limit)
	if err != nil {
		logger.Error("failed to format departures", "error", err)
		return errorResult(err), nil
	}

	output := DeparturesOutput{
		Region:     regionName,
		Timezone:   zone,
		Departures: entries,
	}
	text := fmt.Sprintf("Times are shown in %s.\n%s", zone, format.DeparturesText(entries))

	logger.Info("departures completed", "region", regionName, "stops", len(stopCodes), "departures", len(entries))
	return result(logger, output, text), nil
}

// cachedTimezone returns the named region's timezone if the region list is
// cached and the zone is known, otherwise UTC.
func (r *Registry) cachedTimezone(name string) string {
	regions, ok := r.regions.Cached()
	if !ok {
		return tz.UTC
	}
	reg := region.Find(name, regions)
	if reg == nil || reg.Timezone == "" {
		return tz.UTC
	}
	if _, err := tz.Load(reg.Timezone); err != nil {
		r.logger.Warn("region has unknown timezone", "region", name, "timezone", reg.Timezone)
		return tz.UTC
	}
	return reg.Timezone
}
