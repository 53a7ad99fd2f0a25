package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"educycle_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) (*NominatimGeocoder, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	g := NewNominatimGeocoder(&config.Config{
		GeocoderBaseURL:   srv.URL,
		GeocoderUserAgent: "EduCycle-test",
		GeocoderTimeout:   2 * time.Second,
		GeocoderCacheTTL:  time.Minute,
	}, zap.NewNop())
	return g, &calls
}

func TestGeocode_ParsesAndCaches(t *testing.T) {
	g, calls := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "EduCycle-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "Aundh, Pune", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"18.558","lon":"73.8075","display_name":"Aundh, Pune"}]`))
	})

	p, err := g.Geocode(context.Background(), "Aundh, Pune")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.InDelta(t, 18.558, p.Lat, 1e-9)
	assert.InDelta(t, 73.8075, p.Lon, 1e-9)

	_, err = g.Geocode(context.Background(), "aundh, pune")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGeocode_NoMatch(t *testing.T) {
	g, calls := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	p, err := g.Geocode(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = g.Geocode(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "misses are cached")
}

func TestGeocode_UpstreamError(t *testing.T) {
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := g.Geocode(context.Background(), "Pune")
	assert.Error(t, err)
}

func TestReverse(t *testing.T) {
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		_, _ = w.Write([]byte(`{"display_name":"Shivajinagar, Pune","address":{"suburb":"Shivajinagar","city":"Pune"}}`))
	})
	addr, err := g.Reverse(context.Background(), 18.53, 73.85)
	require.NoError(t, err)
	require.NotNil(t, addr)
	assert.Equal(t, "Pune", addr.City)
	assert.Equal(t, "Shivajinagar", addr.Area)
}
