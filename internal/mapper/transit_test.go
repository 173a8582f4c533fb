package mapper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/envmap-cli/internal/feature"
	"github.com/sells-group/envmap-cli/internal/render"
)

func TestTransit_Run(t *testing.T) {
	out := outPath(t, "transit.html")
	p := &Transit{Options: MapOptions{Output: out, Tiles: render.TilesCartoDBPositron, Zoom: 12}}

	stops := feature.SampleStops()
	s, err := p.Run(context.Background(), stops)
	require.NoError(t, err)
	assert.Equal(t, 12, s.Plotted)
	assert.Zero(t, s.Skipped)
	assert.Positive(t, s.Bytes)

	html, data := pageLayers(t, out)
	assert.Contains(t, html, "leaflet.markercluster.js")
	assert.Equal(t, true, data["cluster"])
	assert.Equal(t, 12.0, data["zoom"])
	assert.Contains(t, data["tiles"].(map[string]any)["url"], "cartocdn")

	wantLat, wantLon, ok := feature.MeanCenter(stops)
	require.True(t, ok)
	center := data["center"].([]any)
	assert.InDelta(t, wantLat, center[0].(float64), 1e-9)
	assert.InDelta(t, wantLon, center[1].(float64), 1e-9)

	markers := data["markers"].([]any)
	require.Len(t, markers, 12)
	first := markers[0].(map[string]any)
	assert.Equal(t, "bus", first["icon"])
	assert.Equal(t, "blue", first["color"])
	assert.Equal(t, "Market St &amp; 5th St", first["popup"])
}

func TestTransit_RunEmpty(t *testing.T) {
	out := outPath(t, "transit.html")
	p := &Transit{Options: MapOptions{Output: out}}

	_, err := p.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoStops))
	assert.Contains(t, err.Error(), "no valid data to plot")
	assert.NoFileExists(t, out)
}

func TestTransit_RunOnlyInvalidStops(t *testing.T) {
	p := &Transit{Options: MapOptions{Output: outPath(t, "transit.html")}}

	s, err := p.Run(context.Background(), []feature.Feature{{ID: "1", Name: "nowhere"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoStops))
	assert.Equal(t, 1, s.Skipped)
}
