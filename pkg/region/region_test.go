package region

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/tripgomcp/pkg/geo"
	"github.com/NERVsystems/tripgomcp/pkg/testutil"
)

func box(minLat, minLng, maxLat, maxLng float64) string {
	return geo.EncodePolygon([]geo.Coordinate{
		{Lat: maxLat, Lng: minLng},
		{Lat: maxLat, Lng: maxLng},
		{Lat: minLat, Lng: maxLng},
		{Lat: minLat, Lng: minLng},
	})
}

var testRegions = []Region{
	{Name: "AU_NSW_Sydney", Polygon: box(-34.2, 150.5, -33.5, 151.5), Timezone: "Australia/Sydney"},
	{Name: "AU_NSW_Wider", Polygon: box(-37.5, 141.0, -28.0, 153.7), Timezone: "Australia/Broken_Hill"},
	{Name: "US_NY_NYC", Polygon: box(40.4, -74.3, 41.0, -73.6), Timezone: "America/New_York"},
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		point    geo.Coordinate
		wantName string
	}{
		{name: "Sydney CBD matches first listed region", point: geo.Coordinate{Lat: -33.87, Lng: 151.21}, wantName: "AU_NSW_Sydney"},
		{name: "Newcastle falls through to wider region", point: geo.Coordinate{Lat: -32.93, Lng: 151.78}, wantName: "AU_NSW_Wider"},
		{name: "Manhattan", point: geo.Coordinate{Lat: 40.758, Lng: -73.9855}, wantName: "US_NY_NYC"},
		{name: "Atlantic ocean", point: geo.Coordinate{Lat: 30, Lng: -40}, wantName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Resolve(tt.point, testRegions)
			require.NoError(t, err)
			if tt.wantName == "" {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, tt.wantName, r.Name)
		})
	}
}

func TestResolve_FirstMatchInListOrder(t *testing.T) {
	reversed := []Region{testRegions[1], testRegions[0]}
	r, err := Resolve(geo.Coordinate{Lat: -33.87, Lng: 151.21}, reversed)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "AU_NSW_Wider", r.Name)
}

func TestResolve_MalformedPolygon(t *testing.T) {
	regions := []Region{{Name: "broken", Polygon: "_p~iF", Timezone: "UTC"}}
	_, err := Resolve(geo.Coordinate{Lat: 1, Lng: 1}, regions)
	var decodeErr *geo.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Contains(t, err.Error(), "broken")
}

func TestTimezoneFor(t *testing.T) {
	zone, r, err := TimezoneFor(geo.Coordinate{Lat: -33.87, Lng: 151.21}, testRegions)
	require.NoError(t, err)
	assert.Equal(t, "Australia/Sydney", zone)
	assert.Equal(t, "AU_NSW_Sydney", r.Name)

	zone, r, err = TimezoneFor(geo.Coordinate{Lat: 0, Lng: 0}, testRegions)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, zone)
	assert.Nil(t, r)

	zone, _, err = TimezoneFor(geo.Coordinate{Lat: 0, Lng: 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, "UTC", zone)
}

func TestFind(t *testing.T) {
	assert.Equal(t, "America/New_York", Find("US_NY_NYC", testRegions).Timezone)
	assert.Nil(t, Find("XX_Nowhere", testRegions))
}

type fakeFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeFetcher) Regions(_ context.Context) ([]Region, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return testRegions, nil
}

func TestCache_ServesWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := NewCache(fetcher, time.Hour, testutil.DiscardLogger())

	_, ok := cache.Cached()
	assert.False(t, ok)

	for i := 0; i < 3; i++ {
		regions, err := cache.Regions(context.Background())
		require.NoError(t, err)
		assert.Len(t, regions, len(testRegions))
	}
	assert.Equal(t, int32(1), fetcher.calls.Load())

	cached, ok := cache.Cached()
	assert.True(t, ok)
	assert.Len(t, cached, len(testRegions))
}

func TestCache_ZeroTTLAlwaysFetches(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := NewCache(fetcher, 0, testutil.DiscardLogger())

	for i := 0; i < 3; i++ {
		_, err := cache.Regions(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), fetcher.calls.Load())

	_, ok := cache.Cached()
	assert.False(t, ok)
}

func TestCache_ErrorsNotCached(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	cache := NewCache(fetcher, time.Hour, testutil.DiscardLogger())

	_, err := cache.Regions(context.Background())
	require.Error(t, err)

	fetcher.err = nil
	regions, err := cache.Regions(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, regions)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

type blockingFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Regions(ctx context.Context) ([]Region, error) {
	if f.calls.Add(1) == 1 {
		close(f.started)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.release:
		return testRegions, nil
	}
}

func TestCache_SharedFetchSurvivesCallerCancel(t *testing.T) {
	fetcher := &blockingFetcher{started: make(chan struct{}), release: make(chan struct{})}
	cache := NewCache(fetcher, time.Hour, testutil.DiscardLogger())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := cache.Regions(ctxA)
		errA <- err
	}()
	<-fetcher.started

	type outcome struct {
		regions []Region
		err     error
	}
	resB := make(chan outcome, 1)
	go func() {
		regions, err := cache.Regions(context.Background())
		resB <- outcome{regions, err}
	}()
	// Let B join the in-flight fetch before A gives up.
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(fetcher.release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Len(t, res.regions, len(testRegions))
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}

	assert.Equal(t, int32(1), fetcher.calls.Load())
	_, ok := cache.Cached()
	assert.True(t, ok)
}

func TestCache_NilLoggerFallsBack(t *testing.T) {
	cache := NewCache(&fakeFetcher{}, time.Hour, nil)
	assert.NotPanics(t, func() {
		regions, err := cache.Regions(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, regions)
	})
}
