package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestNewPoint_Location(t *testing.T) {
	f := NewPoint("1", "Delhi", 28.6139, 77.2090)

	lat, lon, ok := f.Location()
	require.True(t, ok)
	assert.InDelta(t, 28.6139, lat, 1e-9)
	assert.InDelta(t, 77.2090, lon, 1e-9)

	p, isPoint := f.Geometry.(*geom.Point)
	require.True(t, isPoint)
	assert.Equal(t, SRID, p.SRID())
}

func TestLocation_NotAPoint(t *testing.T) {
	f := Feature{Geometry: square(0, 0, 1)}
	_, _, ok := f.Location()
	assert.False(t, ok)
}

func TestCenter(t *testing.T) {
	lat, lon := Center(square(-80, 25, 2))
	assert.InDelta(t, 26.0, lat, 1e-9)
	assert.InDelta(t, -79.0, lon, 1e-9)
}

func TestMeanCenter(t *testing.T) {
	features := []Feature{
		NewPoint("1", "a", 10, 20),
		NewPoint("2", "b", 20, 40),
		{ID: "3"}, // no geometry, ignored
	}
	lat, lon, ok := MeanCenter(features)
	require.True(t, ok)
	assert.InDelta(t, 15.0, lat, 1e-9)
	assert.InDelta(t, 30.0, lon, 1e-9)

	_, _, ok = MeanCenter(nil)
	assert.False(t, ok)
}

func TestParseLatLon(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		wantErr bool
	}{
		{"valid", "37.7840", "-122.4070", false},
		{"bad latitude", "north", "-122.4", true},
		{"bad longitude", "37.7", "", true},
		{"latitude out of range", "91", "0", true},
		{"longitude out of range", "0", "181", true},
		{"nan", "NaN", "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseLatLon(tt.lat, tt.lon)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidLatLon(t *testing.T) {
	assert.True(t, ValidLatLon(-90, 180))
	assert.False(t, ValidLatLon(math.Inf(1), 0))
	assert.False(t, ValidLatLon(0, -180.5))
}

func TestSampleData(t *testing.T) {
	cities := DefaultCities()
	require.Len(t, cities, 20)
	assert.Equal(t, "Delhi", cities[0].Name)
	assert.Equal(t, "Thimphu, Bhutan", cities[19].Name)

	stops := SampleStops()
	require.Len(t, stops, 12)
	assert.Equal(t, "1", stops[0].ID)
	assert.Equal(t, "Market St & 5th St", stops[0].Name)
	lat, lon, ok := stops[11].Location()
	require.True(t, ok)
	assert.InDelta(t, 37.7510, lat, 1e-9)
	assert.InDelta(t, -122.4350, lon, 1e-9)
}

// square returns a closed clockwise square polygon with its lower-left corner at (x, y).
func square(x, y, size float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		x, y,
		x, y + size,
		x + size, y + size,
		x + size, y,
		x, y,
	}, []int{10})
}
