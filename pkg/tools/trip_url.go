package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// TripURLOutput is the JSON body of a get-trip-url result.
type TripURLOutput struct {
	URL string `json:"url"`
}

// GetTripURLTool returns a tool definition for persisting a trip
func GetTripURLTool() mcp.Tool {
	return mcp.NewTool(ToolGetTripURL,
		mcp.WithDescription("Save a trip returned by the routing tool and get a shareable URL for it"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The saveURL of a trip from a routing result"),
		),
	)
}

// HandleGetTripURL persists a trip through its save URL.
func (r *Registry) HandleGetTripURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger(ToolGetTripURL)

	saveURL := optionalString(req, "url")
	if saveURL == "" {
		return errorResult(invalid("url", "is required")), nil
	}

	shareURL, err := r.planner.SaveTrip(ctx, saveURL)
	if err != nil {
		logger.Error("failed to save trip", "error", err)
		return errorResult(err), nil
	}

	logger.Info("trip saved")
	return result(logger, TripURLOutput{URL: shareURL}, fmt.Sprintf("Shareable trip URL: %s", shareURL)), nil
}
