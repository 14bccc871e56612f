package tripgo_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/tripgomcp/pkg/geo"
	"github.com/NERVsystems/tripgomcp/pkg/resilience"
	"github.com/NERVsystems/tripgomcp/pkg/testutil"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
)

const testKey = "test-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *tripgo.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rc := resilience.DefaultClientConfig("tripgo-" + t.Name())
	rc.Logger = testutil.DiscardLogger()
	client, err := tripgo.NewClient(tripgo.ClientConfig{
		APIKey:     testKey,
		BaseURL:    server.URL + "/v1",
		HTTPClient: resilience.NewClient(rc),
		Logger:     testutil.DiscardLogger(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := tripgo.NewClient(tripgo.ClientConfig{})
	assert.Error(t, err)

	_, err = tripgo.NewClient(tripgo.ClientConfig{APIKey: "k", BaseURL: "not a url"})
	assert.Error(t, err)

	client, err := tripgo.NewClient(tripgo.ClientConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClient_Routing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/routing.json", r.URL.Path)
		assert.Equal(t, testKey, r.Header.Get(tripgo.APIKeyHeader))
		assert.Contains(t, r.Header.Get("User-Agent"), "tripgomcp/")

		q := r.URL.Query()
		assert.Equal(t, "(-33.87000,151.21000)", q.Get("from"))
		assert.Equal(t, "(-33.86000,151.20000)", q.Get("to"))
		assert.Equal(t, []string{"pt_pub"}, q["modes"])
		assert.Equal(t, "11", q.Get("v"))

		_, _ = io.WriteString(w, `{
			"groups": [{"trips": [{"depart": 100, "arrive": 700, "weightedScore": 2.5,
				"segments": [{"startTime": 100, "endTime": 700, "segmentTemplateHashCode": 42}]}]}],
			"segmentTemplates": [{"hashCode": 42, "mode": "pt_pub"}]
		}`)
	})

	resp, err := client.Routing(context.Background(), tripgo.RoutingQuery{
		From:  geo.Coordinate{Lat: -33.87, Lng: 151.21},
		To:    geo.Coordinate{Lat: -33.86, Lng: 151.20},
		Modes: []tripgo.Mode{tripgo.ModePublicTransit},
	})
	require.NoError(t, err)
	require.Len(t, resp.Groups, 1)
	require.Len(t, resp.Groups[0].Trips, 1)
	assert.Equal(t, int64(42), resp.Groups[0].Trips[0].Segments[0].SegmentTemplateHashCode)
	require.Len(t, resp.SegmentTemplates, 1)
	assert.Equal(t, "pt_pub", *resp.SegmentTemplates[0].Mode)
}

func TestClient_ErrorField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"error": "Origin is outside coverage", "errorCode": 1001, "usererror": true}`)
	})

	_, err := client.Routing(context.Background(), tripgo.RoutingQuery{})
	require.Error(t, err)

	var upstreamErr *tripgo.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, tripgo.EndpointRouting, upstreamErr.Endpoint)
	assert.Equal(t, "Origin is outside coverage", upstreamErr.Message)
	assert.Equal(t, 1001, upstreamErr.Code)
	assert.True(t, upstreamErr.UserError)
	assert.False(t, upstreamErr.Temporary())
}

func TestClient_HTTPStatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		temporary   bool
	}{
		{name: "unauthorized with error body", status: http.StatusUnauthorized, body: `{"error":"Invalid API key"}`, wantMessage: "Invalid API key"},
		{name: "server error without body", status: http.StatusBadGateway, body: "", wantMessage: "Bad Gateway", temporary: true},
		{name: "rate limited with html body", status: http.StatusTooManyRequests, body: "<html>slow down</html>", wantMessage: "Too Many Requests", temporary: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Locations(context.Background(), tripgo.LocationsQuery{})
			var upstreamErr *tripgo.UpstreamError
			require.ErrorAs(t, err, &upstreamErr)
			assert.Equal(t, tt.status, upstreamErr.StatusCode)
			assert.Equal(t, tt.wantMessage, upstreamErr.Message)
			assert.Equal(t, tt.temporary, upstreamErr.Temporary())
		})
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})

	_, err := client.Regions(context.Background())
	var upstreamErr *tripgo.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "response is not valid JSON", upstreamErr.Message)
	assert.Error(t, upstreamErr.Unwrap())
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	rc := resilience.DefaultClientConfig("tripgo-closed")
	rc.Logger = testutil.DiscardLogger()
	client, err := tripgo.NewClient(tripgo.ClientConfig{
		APIKey:     testKey,
		BaseURL:    baseURL,
		HTTPClient: resilience.NewClient(rc),
		Logger:     testutil.DiscardLogger(),
	})
	require.NoError(t, err)

	_, err = client.Regions(context.Background())
	var upstreamErr *tripgo.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Zero(t, upstreamErr.StatusCode)
	assert.True(t, upstreamErr.Temporary())
}

func TestClient_Regions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/regions.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 2, body["v"])

		_, _ = io.WriteString(w, `{"regions": [
			{"name": "AU_NSW_Sydney", "polygon": "abc", "timezone": "Australia/Sydney",
			 "cities": [{"title": "Sydney", "lat": -33.87, "lng": 151.21}]}
		]}`)
	})

	regions, err := client.Regions(context.Background())
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "AU_NSW_Sydney", regions[0].Name)
	assert.Equal(t, "Australia/Sydney", regions[0].Timezone)
	require.Len(t, regions[0].Cities, 1)
	assert.Equal(t, "Sydney", regions[0].Cities[0].Title)
}

func TestClient_Departures(t *testing.T) {
	at := time.Unix(1705267800, 0)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/departures.json", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "AU_NSW_Sydney", body["region"])
		assert.Equal(t, []any{"200060"}, body["embarkationStops"])
		assert.Equal(t, float64(1705267800), body["timeStamp"])
		assert.Equal(t, float64(5), body["limit"])

		_, _ = io.WriteString(w, `{
			"embarkationStops": [{"stopCode": "200060", "services": [{"serviceNumber": "T1", "startTime": 1705267900}]}],
			"stops": [{"code": "200060", "name": "Central Station", "lat": -33.88, "lng": 151.2}]
		}`)
	})

	resp, err := client.Departures(context.Background(), tripgo.DeparturesQuery{
		Region:    "AU_NSW_Sydney",
		StopCodes: []string{"200060"},
		At:        &at,
		Limit:     5,
	})
	require.NoError(t, err)
	require.Len(t, resp.EmbarkationStops, 1)
	assert.Equal(t, "T1", *resp.EmbarkationStops[0].Services[0].ServiceNumber)
	require.Len(t, resp.Stops, 1)
	assert.Equal(t, "Central Station", *resp.Stops[0].Name)
}

func TestClient_SaveTrip(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/trip/save/abc", r.URL.Path)
		assert.Equal(t, testKey, r.Header.Get(tripgo.APIKeyHeader))
		_, _ = io.WriteString(w, `{"url": "https://tripgo.com/go/xyz"}`)
	})

	// The fake server shares the client's base host, so it is trusted.
	saveURL := serverRoot(client) + "/v1/trip/save/abc"

	shareURL, err := client.SaveTrip(context.Background(), saveURL)
	require.NoError(t, err)
	assert.Equal(t, "https://tripgo.com/go/xyz", shareURL)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_SaveTripRejectsUntrustedURLs(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	})

	for _, raw := range []string{
		"ftp://api.tripgo.com/trip/save/abc",
		"https://evil.example.com/trip/save/abc",
		"https://tripgo.com.evil.example/trip/save",
		"not a url at all",
		"",
	} {
		_, err := client.SaveTrip(context.Background(), raw)
		var urlErr *tripgo.SaveURLError
		assert.ErrorAs(t, err, &urlErr, raw)
	}
	assert.Zero(t, calls.Load())
}

func TestClient_SaveTripMissingURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := client.SaveTrip(context.Background(), serverRoot(client)+"/v1/trip/save/abc")
	assert.True(t, tripgo.IsUpstream(err))
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"regions": []}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Regions(ctx)
	assert.Error(t, err)
}

// serverRoot returns the scheme and host the client was built with.
func serverRoot(client *tripgo.Client) string {
	u := client.BaseURL()
	return u.Scheme + "://" + u.Host
}

// upstreamCount reads the upstream request counter for one endpoint and status.
func upstreamCount(t *testing.T, endpoint, status string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "tripgomcp_upstream_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["endpoint"] == endpoint && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestClient_RecordsUpstreamStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := upstreamCount(t, tripgo.EndpointLocations, "418")
	_, err := client.Locations(context.Background(), tripgo.LocationsQuery{
		Center: geo.Coordinate{Lat: -33.87, Lng: 151.21},
	})
	require.Error(t, err)
	assert.Equal(t, before+1, upstreamCount(t, tripgo.EndpointLocations, "418"))
}
