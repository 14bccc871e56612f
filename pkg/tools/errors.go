// Package tools provides the TripGo MCP tool implementations.
package tools

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/tripgomcp/pkg/geo"
	"github.com/NERVsystems/tripgomcp/pkg/resilience"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
	"github.com/NERVsystems/tripgomcp/pkg/tz"
)

// Guidance shown under a failed tool call.
const (
	GuidanceTripGoAuth        = "The TripGo API key was rejected. Check the TRIPGO_API_KEY setting."
	GuidanceTripGoRequest     = "TripGo could not serve this request. Check that both points are inside a covered region and the parameters are consistent."
	GuidanceTripGoUnavailable = "TripGo is failing repeatedly and requests are paused. Please try again in about a minute."
	GuidanceTripGoNoRoute     = "No trips were found. Try different modes, a later time, or a longer walking limit."
	GuidanceTripURL           = "Pass the saveURL value of a trip returned by the routing tool."

	GuidanceValidation   = "Please correct the parameters and try again."
	GuidanceTimeFormat   = "Use an ISO-8601 time such as 2024-01-15T08:30:00 (local to the region) or 2024-01-15T08:30:00+11:00."
	GuidanceTimezone     = "The region reported a timezone this server does not recognise. Pass times with an explicit UTC offset."
	GuidanceRegionData   = "The coverage region data could not be decoded. Please try again later."
	GuidanceRateLimited  = "TripGo is throttling this API key. Wait a few seconds before retrying."
	GuidanceTimeout      = "TripGo took too long to answer. Retry, or narrow the request."
	GuidanceGeneral      = "Please try again later or modify your request parameters."
	GuidanceNetworkError = "Check your internet connection and try again."
)

// ToolError is what a failed tool call reports: the failing stage, the
// cause and a hint the assistant can act on.
type ToolError struct {
	Stage    string // "validation", "timezone" or "tripgo"
	Status   int    // upstream HTTP status, 0 when none was received
	Message  string
	Guidance string
}

func (e *ToolError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Stage, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Stage, e.Message)
}

// Result renders e as an MCP tool error.
func (e *ToolError) Result() *mcp.CallToolResult {
	guidance := e.Guidance
	if guidance == "" {
		guidance = statusGuidance(e.Status)
	}
	return mcp.NewToolResultError(fmt.Sprintf("Error: %s\n\nGuidance: %s", e.Message, guidance))
}

func statusGuidance(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return GuidanceRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return GuidanceTimeout
	default:
		return GuidanceGeneral
	}
}

// ValidationError reports a malformed tool argument.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// errorResult converts a handler failure into a tool error carrying guidance.
func errorResult(err error) *mcp.CallToolResult {
	var (
		validationErr *ValidationError
		saveURLErr    *tripgo.SaveURLError
		parseErr      *tz.ParseError
		zoneErr       *tz.UnknownTimezoneError
		decodeErr     *geo.DecodeError
		upstreamErr   *tripgo.UpstreamError
	)

	var te *ToolError
	switch {
	case errors.As(err, &validationErr):
		te = &ToolError{Stage: "validation", Message: validationErr.Error(), Guidance: GuidanceValidation}
	case errors.As(err, &saveURLErr):
		te = &ToolError{Stage: "validation", Message: saveURLErr.Error(), Guidance: GuidanceTripURL}
	case errors.As(err, &parseErr):
		te = &ToolError{Stage: "validation", Message: parseErr.Error(), Guidance: GuidanceTimeFormat}
	case errors.As(err, &zoneErr):
		te = &ToolError{Stage: "timezone", Message: zoneErr.Error(), Guidance: GuidanceTimezone}
	case errors.As(err, &decodeErr):
		te = &ToolError{Stage: "tripgo", Message: decodeErr.Error(), Guidance: GuidanceRegionData}
	case errors.As(err, &upstreamErr):
		te = &ToolError{Stage: "tripgo", Status: upstreamErr.StatusCode, Message: upstreamErr.Error(), Guidance: upstreamGuidance(upstreamErr)}
	default:
		return mcp.NewToolResultError(err.Error())
	}
	return te.Result()
}

func upstreamGuidance(err *tripgo.UpstreamError) string {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return GuidanceTripGoUnavailable
	case err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden:
		return GuidanceTripGoAuth
	case err.UserError:
		return GuidanceTripGoRequest
	case err.StatusCode == 0:
		return GuidanceNetworkError
	default:
		return ""
	}
}
