// Package tripgo is the HTTP client for the TripGo trip-planning API.
// Every call returns parsed, request-scoped values; nothing is cached here.
package tripgo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NERVsystems/tripgomcp/pkg/metrics"
	"github.com/NERVsystems/tripgomcp/pkg/region"
	"github.com/NERVsystems/tripgomcp/pkg/resilience"
	"github.com/NERVsystems/tripgomcp/pkg/version"
)

const (
	// DefaultBaseURL is the TripGo API base URL.
	DefaultBaseURL = "https://api.tripgo.com/v1"

	// APIKeyHeader carries the API key on every request.
	APIKeyHeader = "X-TripGo-Key"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 << 20
)

// Endpoint names, used in errors, logs and metrics.
const (
	EndpointRegions    = "regions.json"
	EndpointRouting    = "routing.json"
	EndpointLocations  = "locations.json"
	EndpointDepartures = "departures.json"
	EndpointSaveTrip   = "save"
)

// trustedHostSuffixes are the domains a caller-supplied save URL may point
// at. The API key is never sent anywhere else.
var trustedHostSuffixes = []string{".tripgo.com", ".skedgo.com"}

// ClientConfig holds configuration for the TripGo client.
type ClientConfig struct {
	// APIKey is the TripGo API key (required).
	APIKey string

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// HTTPClient is the resilient transport. Nil uses resilience defaults.
	HTTPClient *resilience.Client

	// RateLimiter paces requests. Nil disables limiting.
	RateLimiter *RateLimiter

	Logger *slog.Logger
}

// Client is a TripGo API client.
type Client struct {
	apiKey     string
	baseURL    *url.URL
	httpClient *resilience.Client
	limiter    *RateLimiter
	logger     *slog.Logger
}

// NewClient creates a TripGo client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("tripgo: API key is required")
	}

	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("tripgo: invalid base URL %q", raw)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig("tripgo")
		rc.Logger = logger
		httpClient = resilience.NewClient(rc)
	}

	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = NewRateLimiter(0, 1, logger)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    base,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger.With("component", "tripgo"),
	}, nil
}

// BaseURL returns a copy of the API base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Regions fetches the full coverage region list.
func (c *Client) Regions(ctx context.Context) ([]region.Region, error) {
	var resp RegionsResponse
	if err := c.post(ctx, EndpointRegions, map[string]int{"v": 2}, &resp); err != nil {
		return nil, err
	}
	return resp.Regions, nil
}

// Routing computes trips between two points.
func (c *Client) Routing(ctx context.Context, q RoutingQuery) (*RoutingResponse, error) {
	var resp RoutingResponse
	if err := c.get(ctx, EndpointRouting, c.endpointURL(EndpointRouting, q.Values()), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveTrip persists a trip through its save URL and returns the shareable URL.
func (c *Client) SaveTrip(ctx context.Context, saveURL string) (string, error) {
	u, err := c.checkSaveURL(saveURL)
	if err != nil {
		return "", err
	}

	var resp SaveTripResponse
	if err := c.get(ctx, EndpointSaveTrip, u.String(), &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", &UpstreamError{Endpoint: EndpointSaveTrip, Message: "response did not include a URL"}
	}
	return resp.URL, nil
}

// Locations lists stops, vehicles and facilities around a point.
func (c *Client) Locations(ctx context.Context, q LocationsQuery) (*LocationsResponse, error) {
	var resp LocationsResponse
	if err := c.get(ctx, EndpointLocations, c.endpointURL(EndpointLocations, q.Values()), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Departures lists upcoming services from the given stops.
func (c *Client) Departures(ctx context.Context, q DeparturesQuery) (*DeparturesResponse, error) {
	var resp DeparturesResponse
	if err := c.post(ctx, EndpointDepartures, q.body(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveURLError reports a save URL that cannot be used.
type SaveURLError struct {
	URL    string
	Reason string
}

func (e *SaveURLError) Error() string {
	return fmt.Sprintf("invalid trip URL %q: %s", e.URL, e.Reason)
}

func (c *Client) checkSaveURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, &SaveURLError{URL: raw, Reason: err.Error()}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, &SaveURLError{URL: raw, Reason: "must be an http(s) URL"}
	}
	host := u.Hostname()
	if host == "" {
		return nil, &SaveURLError{URL: raw, Reason: "missing host"}
	}
	if host == c.baseURL.Hostname() {
		return u, nil
	}
	for _, suffix := range trustedHostSuffixes {
		if strings.HasSuffix(host, suffix) || host == suffix[1:] {
			return u, nil
		}
	}
	return nil, &SaveURLError{URL: raw, Reason: "host is not a TripGo server"}
}

// response is implemented by every response type through the embedded Status.
type response interface {
	status() *Status
}

func (c *Client) endpointURL(endpoint string, q url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + "/" + endpoint
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, out response) error {
	return c.do(ctx, endpoint, http.MethodGet, rawURL, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body any, out response) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, http.MethodPost, c.endpointURL(endpoint, nil), data, out)
}

func (c *Client) do(ctx context.Context, endpoint, method, rawURL string, body []byte, out response) error {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return &UpstreamError{Endpoint: endpoint, Message: "request cancelled while rate limited", Err: err}
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", endpoint, err)
	}
	c.setHeaders(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		status := metrics.StatusNetworkError
		if errors.Is(err, resilience.ErrCircuitOpen) {
			status = metrics.StatusCircuitOpen
		}
		metrics.ObserveUpstream(endpoint, status, time.Since(start))
		c.logger.Error("upstream request failed", "endpoint", endpoint, "error", err)
		return &UpstreamError{Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "reading response failed", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstreamErr := &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
		var st Status
		if json.Unmarshal(data, &st) == nil && st.Error != "" {
			upstreamErr.Message = st.Error
			upstreamErr.Code = st.ErrorCode
			upstreamErr.UserError = st.UserError
		}
		c.logger.Warn("upstream returned error status", "endpoint", endpoint, "status", resp.StatusCode, "message", upstreamErr.Message)
		return upstreamErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "response is not valid JSON", Err: err}
	}
	if st := out.status(); st.Error != "" {
		c.logger.Warn("upstream reported error", "endpoint", endpoint, "message", st.Error, "code", st.ErrorCode)
		return &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Code:       st.ErrorCode,
			UserError:  st.UserError,
			Message:    st.Error,
		}
	}

	c.logger.Debug("upstream request completed", "endpoint", endpoint, "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))
	return nil
}

// setHeaders sets common request headers.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}
