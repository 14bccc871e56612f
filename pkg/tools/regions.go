package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/tripgomcp/pkg/region"
)

// RegionSummary describes one coverage region without its boundary.
type RegionSummary struct {
	Name     string   `json:"name"`
	Timezone string   `json:"timezone"`
	Cities   []string `json:"cities,omitempty"`
	Modes    []string `json:"modes,omitempty"`
}

// RegionsOutput is the JSON body of a regions result. Match is set only for
// point lookups; Regions only for listings.
type RegionsOutput struct {
	Timezone string          `json:"timezone,omitempty"`
	Match    *RegionSummary  `json:"match,omitempty"`
	Regions  []RegionSummary `json:"regions,omitempty"`
	Count    int             `json:"count"`
}

// RegionsTool returns a tool definition for coverage region lookup
func RegionsTool() mcp.Tool {
	return mcp.NewTool(ToolRegions,
		mcp.WithDescription("List TripGo coverage regions, or find the region and timezone containing a point when lat and lng are given"),
		mcp.WithNumber("lat",
			mcp.Description("Latitude of the point to resolve"),
		),
		mcp.WithNumber("lng",
			mcp.Description("Longitude of the point to resolve"),
		),
	)
}

// HandleRegions lists regions or resolves the region for a point.
func (r *Registry) HandleRegions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger(ToolRegions)

	_, hasLat := argument(req, "lat")
	_, hasLng := argument(req, "lng")
	if hasLat != hasLng {
		return errorResult(invalid("lat/lng", "both or neither must be given")), nil
	}

	regions, err := r.regions.Regions(ctx)
	if err != nil {
		logger.Error("failed to load regions", "error", err)
		return errorResult(err), nil
	}

	if !hasLat {
		output := RegionsOutput{Regions: make([]RegionSummary, 0, len(regions)), Count: len(regions)}
		names := make([]string, 0, len(regions))
		for _, reg := range regions {
			output.Regions = append(output.Regions, summarize(reg))
			names = append(names, reg.Name)
		}
		text := fmt.Sprintf("%d coverage region(s): %s", len(regions), strings.Join(names, ", "))
		return result(logger, output, text), nil
	}

	point, err := requiredCoordinate(req, "lat", "lng")
	if err != nil {
		return errorResult(err), nil
	}
	zone, matched, err := region.TimezoneFor(point, regions)
	if err != nil {
		logger.Error("failed to resolve region", "error", err)
		return errorResult(err), nil
	}

	output := RegionsOutput{Timezone: zone}
	text := fmt.Sprintf("%s is not inside any coverage region; times default to %s.", point, zone)
	if matched != nil {
		s := summarize(*matched)
		output.Match = &s
		output.Count = 1
		text = fmt.Sprintf("%s is in region %s (timezone %s).", point, matched.Name, zone)
	}
	return result(logger, output, text), nil
}

func summarize(reg region.Region) RegionSummary {
	s := RegionSummary{
		Name:     reg.Name,
		Timezone: reg.Timezone,
		Modes:    reg.Modes,
	}
	for _, c := range reg.Cities {
		s.Cities = append(s.Cities, c.Title)
	}
	return s
}
