package tripgo

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError reports a failed TripGo call: a transport failure, a non-2xx
// status, a body that is not JSON, or an error field in the parsed body.
type UpstreamError struct {
	Endpoint   string // e.g. "routing.json"
	StatusCode int    // 0 when no response was received
	Code       int    // TripGo errorCode, when present
	UserError  bool   // TripGo flags errors caused by the request itself
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("TripGo %s error (%d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("TripGo %s error: %s", e.Endpoint, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Temporary reports whether retrying later may succeed.
func (e *UpstreamError) Temporary() bool {
	if e.UserError {
		return false
	}
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// IsUpstream reports whether err is or wraps an *UpstreamError.
func IsUpstream(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}
