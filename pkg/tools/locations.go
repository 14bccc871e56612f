package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/tripgomcp/pkg/format"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
)

const (
	defaultLocationsLimit = 10
	maxLocationsLimit     = 100
	maxLocationsRadius    = 20000 // meters
)

// LocationsTool returns a tool definition for nearby location search
func LocationsTool() mcp.Tool {
	return mcp.NewTool(ToolLocations,
		mcp.WithDescription("Find public transport stops, bike and car share pods, car parks, rentals and other facilities near a point"),
		mcp.WithNumber("lat",
			mcp.Required(),
			mcp.Description("Latitude of the search center"),
		),
		mcp.WithNumber("lng",
			mcp.Required(),
			mcp.Description("Longitude of the search center"),
		),
		mcp.WithNumber("radius",
			mcp.Description("Search radius in meters (max 20000)"),
		),
		mcp.WithArray("modes",
			mcp.Description("Only return locations serving these modes"),
			mcp.Items(map[string]any{
				"type": "string",
				"enum": tripgo.ModeNames(),
			}),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of locations to return (default 10)"),
			mcp.DefaultNumber(defaultLocationsLimit),
		),
	)
}

// HandleLocations lists locations around a point, flattened by category.
func (r *Registry) HandleLocations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger(ToolLocations)

	center, err := requiredCoordinate(req, "lat", "lng")
	if err != nil {
		return errorResult(err), nil
	}
	radius, err := optionalInt(req, "radius", 1, maxLocationsRadius)
	if err != nil {
		return errorResult(err), nil
	}
	modes, err := modesArg(req, "modes")
	if err != nil {
		return errorResult(err), nil
	}
	limit, err := intOrDefault(req, "limit", defaultLocationsLimit, 1, maxLocationsLimit)
	if err != nil {
		return errorResult(err), nil
	}

	resp, err := r.planner.Locations(ctx, tripgo.LocationsQuery{
		Center: center,
		Radius: radius,
		Modes:  modes,
		Limit:  &limit,
	})
	if err != nil {
		logger.Error("locations request failed", "error", err)
		return errorResult(err), nil
	}

	list, err := format.Locations(resp, center, limit)
	if err != nil {
		logger.Error("failed to format locations", "error", err)
		return errorResult(err), nil
	}

	logger.Info("locations completed", "total", list.Total, "returned", len(list.Locations))
	return result(logger, list, format.LocationsText(list)), nil
}
