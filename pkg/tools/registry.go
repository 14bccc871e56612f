package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/tripgomcp/pkg/metrics"
	"github.com/NERVsystems/tripgomcp/pkg/region"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
)

// TripPlanner is the upstream API surface the tools call.
type TripPlanner interface {
	Routing(ctx context.Context, q tripgo.RoutingQuery) (*tripgo.RoutingResponse, error)
	SaveTrip(ctx context.Context, saveURL string) (string, error)
	Locations(ctx context.Context, q tripgo.LocationsQuery) (*tripgo.LocationsResponse, error)
	Departures(ctx context.Context, q tripgo.DeparturesQuery) (*tripgo.DeparturesResponse, error)
}

// RegionSource supplies the coverage region list.
type RegionSource interface {
	Regions(ctx context.Context) ([]region.Region, error)
	// Cached returns the list only when it is available without an upstream call.
	Cached() ([]region.Region, bool)
}

// Registry holds all MCP tool registrations for the TripGo service.
type Registry struct {
	planner TripPlanner
	regions RegionSource
	logger  *slog.Logger
}

// NewRegistry creates a new MCP tool registry.
func NewRegistry(planner TripPlanner, regions RegionSource, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		planner: planner,
		regions: regions,
		logger:  logger,
	}
}

// ToolDefinition represents a TripGo MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     server.ToolHandlerFunc
}

// GetToolDefinitions returns all TripGo MCP tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolRouting,
			Description: "Plan multimodal trips between two points",
			Tool:        RoutingTool(),
			Handler:     r.HandleRouting,
		},
		{
			Name:        ToolGetTripURL,
			Description: "Persist a trip and return a shareable URL",
			Tool:        GetTripURLTool(),
			Handler:     r.HandleGetTripURL,
		},
		{
			Name:        ToolLocations,
			Description: "List stops, shared vehicles and facilities near a point",
			Tool:        LocationsTool(),
			Handler:     r.HandleLocations,
		},
		{
			Name:        ToolDepartures,
			Description: "List upcoming departures from public transport stops",
			Tool:        DeparturesTool(),
			Handler:     r.HandleDepartures,
		},
		{
			Name:        ToolRegions,
			Description: "List coverage regions or find the region for a point",
			Tool:        RegionsTool(),
			Handler:     r.HandleRegions,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, instrument(def.Name, def.Handler))
	}
}

// instrument records the outcome and latency of every call to h.
func instrument(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := h(ctx, req)
		metrics.ObserveTool(name, err != nil || (result != nil && result.IsError), time.Since(start))
		return result, err
	}
}

// toolLogger tags a handler's log lines with the tool name and a request ID.
func (r *Registry) toolLogger(tool string) *slog.Logger {
	return r.logger.With("tool", tool, "request_id", uuid.NewString())
}

// result returns v as JSON followed by a human-readable rendering.
func result(logger *slog.Logger, v any, text string) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return mcp.NewToolResultError("Failed to generate result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(data)),
			mcp.NewTextContent(text),
		},
	}
}
