package elevation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer answers every location with elevation = lat*100, or null where
// lat is negative.
func echoServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/srtm30m", r.URL.Path)

		locs := strings.Split(r.URL.Query().Get("locations"), "|")
		results := make([]string, len(locs))
		for i, l := range locs {
			var lat, lon float64
			_, err := fmt.Sscanf(l, "%g,%g", &lat, &lon)
			require.NoError(t, err)
			if lat < 0 {
				results[i] = `{"dataset":"srtm30m","elevation":null}`
				continue
			}
			results[i] = fmt.Sprintf(`{"dataset":"srtm30m","elevation":%g}`, lat*100)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"OK","results":[%s]}`, strings.Join(results, ","))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup(t *testing.T) {
	var calls atomic.Int32
	srv := echoServer(t, &calls)
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))

	samples, err := c.Lookup(context.Background(), []Location{
		{Lat: 1.5, Lon: 10},
		{Lat: -2, Lon: 10},
		{Lat: 3, Lon: 10},
	})
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.True(t, samples[0].Valid)
	assert.InDelta(t, 150.0, samples[0].Elevation, 1e-9)
	assert.Equal(t, Location{Lat: 1.5, Lon: 10}, samples[0].Location)

	assert.False(t, samples[1].Valid)
	assert.Zero(t, samples[1].Elevation)

	assert.InDelta(t, 300.0, samples[2].Elevation, 1e-9)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLookup_Batches(t *testing.T) {
	var calls atomic.Int32
	srv := echoServer(t, &calls)
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0), WithBatchSize(4))

	locs := make([]Location, 10)
	for i := range locs {
		locs[i] = Location{Lat: float64(i), Lon: 0}
	}

	samples, err := c.Lookup(context.Background(), locs)
	require.NoError(t, err)
	require.Len(t, samples, 10)
	assert.Equal(t, int32(3), calls.Load())
	for i, s := range samples {
		assert.InDelta(t, float64(i)*100, s.Elevation, 1e-9)
	}
}

func TestLookup_Empty(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:0"))
	samples, err := c.Lookup(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestLookup_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"invalid request", http.StatusBadRequest, `{"status":"INVALID_REQUEST","error":"Too many locations provided (101), the limit is 100."}`, "Too many locations"},
		{"server error", http.StatusInternalServerError, `oops`, "unexpected status 500"},
		{"bad json", http.StatusOK, `{"status":`, "parse response"},
		{"short results", http.StatusOK, `{"status":"OK","results":[]}`, "got 0 results for 1 locations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
			_, err := c.Lookup(context.Background(), []Location{{Lat: 1, Lon: 1}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLookup_Dataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/aster30m", r.URL.Path)
		assert.Equal(t, "27.9881,86.925", r.URL.Query().Get("locations"))
		_, _ = io.WriteString(w, `{"status":"OK","results":[{"elevation":8752.0}]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/"), WithDataset("aster30m"), WithRateLimit(0))
	samples, err := c.Lookup(context.Background(), []Location{{Lat: 27.9881, Lon: 86.925}})
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.InDelta(t, 8752.0, samples[0].Elevation, 1e-9)
}

func TestLookup_CancelledContext(t *testing.T) {
	var calls atomic.Int32
	srv := echoServer(t, &calls)
	c := NewClient(WithBaseURL(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Lookup(ctx, []Location{{Lat: 1, Lon: 1}})
	assert.Error(t, err)
}

func TestWithBatchSize_IgnoresOutOfRange(t *testing.T) {
	o := NewClient(WithBatchSize(0), WithBatchSize(500)).(*openTopo)
	assert.Equal(t, MaxBatch, o.batchSize)
}
