// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTripPlanningPrompts registers the trip planning prompts with the MCP server
func RegisterTripPlanningPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("trip_planning",
		mcp.WithPromptDescription("Instructions for planning trips with the TripGo tools"),
	), TripPlanningPromptHandler)

	s.AddPrompt(mcp.NewPrompt("departures_examples",
		mcp.WithPromptDescription("Examples of finding stops and their departures"),
	), DeparturesExamplesHandler)
}

// TripPlanningPromptHandler returns the main prompt for the trip planning tools
func TripPlanningPromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemPrompt := `You have access to TripGo trip planning tools.
When using these tools:

1. routing needs decimal coordinates for both ends. Geocode place names first if you only have an address.
2. Times without an offset, e.g. "2024-01-15T08:30:00", are read as local time at the origin. Add an offset such as "+11:00" to be explicit.
3. Give departureTime or arrivalTime, not both. If both are sent, departureTime is used.
4. Results contain up to two alternatives per journey type, best first. Lower score is better.
5. To share a trip, pass its saveURL to get-trip-url.
6. For a departure board, call locations near the point first, then departures with the region and the stop codes it returned.

IMPORTANT MODE NAMES:
✅ GOOD: ["public-transit", "walking"]
❌ BAD: ["bus", "train"]

ERROR HANDLING GUIDELINES:
When you receive error responses from the tools:
1. Read the Guidance line and follow it
2. If a point is outside coverage, use the regions tool to check which regions exist
3. If no trips are found, relax the walking limit or allow more modes`

	return mcp.NewGetPromptResult(
		"Trip Planning Tool Usage Guidelines",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(systemPrompt),
			),
		},
	), nil
}

// DeparturesExamplesHandler returns examples for the departures workflow
func DeparturesExamplesHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	examplesPrompt := `EXAMPLES OF EFFECTIVE DEPARTURES USAGE:

User: "When is the next train from Central Station in Sydney?"
AI: *uses regions with lat -33.883, lng 151.206 to get the region code*
AI: *uses locations with lat -33.883, lng 151.206, modes ["public-transit"]*
AI: *uses departures with region "AU_NSW_Sydney" and the stop codes of the matching stops*

User: "What leaves Town Hall after 6pm?"
AI: *uses departures with timestamp "2024-01-15T18:00:00" for the stops near Town Hall*`

	return mcp.NewGetPromptResult(
		"Departures Examples",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(examplesPrompt),
			),
		},
	), nil
}
