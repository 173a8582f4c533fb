package mapper

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/envmap-cli/internal/classify"
	"github.com/sells-group/envmap-cli/internal/feature"
	"github.com/sells-group/envmap-cli/pkg/elevation"
)

// terrain is low west of lon 1, high east of lon 3, and has no coverage
// south of lat -5.
type terrain struct {
	fail bool
}

func (t terrain) Lookup(_ context.Context, locs []elevation.Location) ([]elevation.Sample, error) {
	if t.fail {
		return nil, eris.New("upstream unavailable")
	}
	out := make([]elevation.Sample, len(locs))
	for i, l := range locs {
		out[i].Location = l
		switch {
		case l.Lat < -5:
		case l.Lon < 1:
			out[i].Elevation, out[i].Valid = 800, true
		default:
			out[i].Elevation, out[i].Valid = 1600, true
		}
	}
	return out, nil
}

func zone(id, name string, x, y float64) feature.Feature {
	flat := []float64{x, y, x, y + 1, x + 1, y + 1, x + 1, y, x, y}
	return feature.Feature{
		ID:       id,
		Name:     name,
		Geometry: geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}),
	}
}

func TestElevation_Run(t *testing.T) {
	out := outPath(t, "elev.html")
	p := &Elevation{
		Client:  terrain{},
		Table:   classify.Elevation(),
		Samples: 16,
		Options: MapOptions{Output: out, Zoom: 10},
	}

	zones := []feature.Feature{
		zone("1", "Lowland", 0, 0),
		zone("2", "Highland", 3, 0),
		zone("3", "Offshore", 0, -10),
	}
	s, err := p.Run(context.Background(), zones)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Plotted)
	assert.Equal(t, 1, s.Skipped)

	_, data := pageLayers(t, out)

	// Centered on the mean of all zone centers.
	center := data["center"].([]any)
	assert.InDelta(t, (0.5+0.5-9.5)/3, center[0].(float64), 1e-9)
	assert.InDelta(t, (0.5+3.5+0.5)/3, center[1].(float64), 1e-9)

	features := data["polygons"].(map[string]any)["features"].([]any)
	require.Len(t, features, 2)

	low := features[0].(map[string]any)["properties"].(map[string]any)
	high := features[1].(map[string]any)["properties"].(map[string]any)

	assert.Equal(t, "red", low["style"].(map[string]any)["fillColor"])
	assert.Equal(t, "green", high["style"].(map[string]any)["fillColor"])
	for _, p := range []map[string]any{low, high} {
		st := p["style"].(map[string]any)
		assert.Equal(t, "black", st["color"])
		assert.Equal(t, 2.0, st["weight"])
		assert.Equal(t, 0.4, st["fillOpacity"])
	}
	assert.Contains(t, low["tooltip"], "Zone: Lowland")
	assert.Contains(t, low["tooltip"], "Mean Elevation: 800.00 meters")
	assert.Contains(t, high["tooltip"], "Zone: Highland")
}

func TestElevation_RunProviderErrorSkipsZone(t *testing.T) {
	out := outPath(t, "elev.html")
	p := &Elevation{Client: terrain{fail: true}, Table: classify.Elevation(), Samples: 4, Options: MapOptions{Output: out}}

	s, err := p.Run(context.Background(), []feature.Feature{zone("1", "A", 0, 0), zone("2", "B", 3, 0)})
	require.NoError(t, err)
	assert.Zero(t, s.Plotted)
	assert.Equal(t, 2, s.Skipped)

	_, data := pageLayers(t, out)
	assert.Empty(t, data["polygons"].(map[string]any)["features"])
}

func TestElevation_RunNameFallsBackToID(t *testing.T) {
	out := outPath(t, "elev.html")
	p := &Elevation{Client: terrain{}, Table: classify.Elevation(), Samples: 4, Options: MapOptions{Output: out}}

	_, err := p.Run(context.Background(), []feature.Feature{zone("06003", "", 0, 0)})
	require.NoError(t, err)

	_, data := pageLayers(t, out)
	features := data["polygons"].(map[string]any)["features"].([]any)
	require.Len(t, features, 1)
	assert.Contains(t, features[0].(map[string]any)["properties"].(map[string]any)["tooltip"], "Zone: 06003")
}

func TestElevation_RunCustomTable(t *testing.T) {
	table := classify.MustTable("bands",
		classify.Bucket{Upper: 1000, Label: "Plains", Color: "#a6d96a"},
		classify.Bucket{Upper: classify.Unbounded, Label: "Hills", Color: "#fdae61"},
	)
	out := outPath(t, "elev.html")
	p := &Elevation{Client: terrain{}, Table: table, Samples: 4, Options: MapOptions{Output: out}}

	_, err := p.Run(context.Background(), []feature.Feature{zone("1", "A", 0, 0), zone("2", "B", 3, 0)})
	require.NoError(t, err)

	html, data := pageLayers(t, out)
	assert.Contains(t, html, "Plains")
	features := data["polygons"].(map[string]any)["features"].([]any)
	require.Len(t, features, 2)
	assert.Equal(t, "#a6d96a", features[0].(map[string]any)["properties"].(map[string]any)["style"].(map[string]any)["fillColor"])
	assert.Equal(t, "#fdae61", features[1].(map[string]any)["properties"].(map[string]any)["style"].(map[string]any)["fillColor"])
}

func TestElevationTooltip(t *testing.T) {
	assert.Equal(t,
		`<div style="font-size: 18px; font-weight: bold; color: #333;">Zone: Alpine<br>Mean Elevation: 512.35 meters</div>`,
		elevationTooltip("Alpine", 512.345678))
}
