// Package zonal computes zonal statistics of an elevation surface over
// polygon features by sampling a regular grid inside each polygon.
package zonal

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/envmap-cli/pkg/elevation"
)

// DefaultSamples is the grid size used when the caller passes zero.
const DefaultSamples = 64

// ErrNoData is returned when no sample inside a zone has a value.
var ErrNoData = eris.New("zonal: no elevation data for zone")

// Stats summarizes the samples of one zone.
type Stats struct {
	Mean    float64
	Min     float64
	Max     float64
	Count   int // samples with a value
	Missing int // samples without coverage
}

// MeanElevation returns the mean elevation over g, sampled with roughly
// samples grid points.
func MeanElevation(ctx context.Context, client elevation.Client, g geom.T, samples int) (float64, int, error) {
	s, err := Summarize(ctx, client, g, samples)
	if err != nil {
		return 0, 0, err
	}
	return s.Mean, s.Count, nil
}

// Summarize samples g and returns mean, range and counts.
func Summarize(ctx context.Context, client elevation.Client, g geom.T, samples int) (Stats, error) {
	locs := SamplePoints(g, samples)
	if len(locs) == 0 {
		return Stats{}, eris.Wrap(ErrNoData, "geometry has no sample points")
	}

	results, err := client.Lookup(ctx, locs)
	if err != nil {
		return Stats{}, eris.Wrap(err, "zonal: elevation lookup")
	}

	values := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Valid && !math.IsNaN(r.Elevation) && !math.IsInf(r.Elevation, 0) {
			values = append(values, r.Elevation)
		}
	}

	st := Stats{Count: len(values), Missing: len(results) - len(values)}
	if st.Count == 0 {
		return st, eris.Wrapf(ErrNoData, "all %d samples missing", len(results))
	}

	st.Mean = stat.Mean(values, nil)
	st.Min, st.Max = values[0], values[0]
	for _, v := range values[1:] {
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}

	zap.L().Debug("zonal: zone sampled",
		zap.Int("requested", samples),
		zap.Int("points", len(locs)),
		zap.Int("valid", st.Count),
		zap.Float64("mean", st.Mean),
	)
	return st, nil
}

// SamplePoints lays a grid of about n cells over g's bounding box and keeps
// the cell centres that fall inside g. When none do (thin or tiny zones) the
// average exterior vertex of each polygon is used instead.
func SamplePoints(g geom.T, n int) []elevation.Location {
	if n <= 0 {
		n = DefaultSamples
	}

	switch t := g.(type) {
	case *geom.Point:
		if t.Empty() {
			return nil
		}
		return []elevation.Location{{Lat: t.Y(), Lon: t.X()}}
	case *geom.Polygon, *geom.MultiPolygon:
	default:
		return nil
	}

	polys := polygonsOf(g)
	if len(polys) == 0 {
		return nil
	}

	b := g.Bounds()
	minX, minY := b.Min(0), b.Min(1)
	w, h := b.Max(0)-minX, b.Max(1)-minY

	var locs []elevation.Location
	if w > 0 && h > 0 {
		nx := int(math.Ceil(math.Sqrt(float64(n) * w / h)))
		nx = max(nx, 1)
		ny := max(int(math.Ceil(float64(n)/float64(nx))), 1)
		dx, dy := w/float64(nx), h/float64(ny)

		for j := 0; j < ny; j++ {
			y := minY + (float64(j)+0.5)*dy
			for i := 0; i < nx; i++ {
				x := minX + (float64(i)+0.5)*dx
				if containsAny(polys, x, y) {
					locs = append(locs, elevation.Location{Lat: y, Lon: x})
				}
			}
		}
	}
	if len(locs) > 0 {
		return locs
	}

	for _, p := range polys {
		if lon, lat, ok := vertexAverage(p); ok {
			locs = append(locs, elevation.Location{Lat: lat, Lon: lon})
		}
	}
	return locs
}

func polygonsOf(g geom.T) []*geom.Polygon {
	switch t := g.(type) {
	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return nil
		}
		return []*geom.Polygon{t}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			if p := t.Polygon(i); p.NumLinearRings() > 0 {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

func containsAny(polys []*geom.Polygon, x, y float64) bool {
	for _, p := range polys {
		if Contains(p, x, y) {
			return true
		}
	}
	return false
}

// Contains reports whether (x, y) lies inside p using the even-odd rule over
// all rings, so points inside a hole are outside the polygon.
func Contains(p *geom.Polygon, x, y float64) bool {
	inside := false
	for r := 0; r < p.NumLinearRings(); r++ {
		ring := p.LinearRing(r)
		flat, stride := ring.FlatCoords(), ring.Stride()
		n := len(flat) / stride
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			xi, yi := flat[i*stride], flat[i*stride+1]
			xj, yj := flat[j*stride], flat[j*stride+1]
			if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
				inside = !inside
			}
		}
	}
	return inside
}

// vertexAverage is the mean of the exterior ring's distinct vertices.
func vertexAverage(p *geom.Polygon) (x, y float64, ok bool) {
	ring := p.LinearRing(0)
	flat, stride := ring.FlatCoords(), ring.Stride()
	n := len(flat) / stride
	if n == 0 {
		return 0, 0, false
	}
	if n > 1 && flat[0] == flat[(n-1)*stride] && flat[1] == flat[(n-1)*stride+1] {
		n--
	}
	for i := 0; i < n; i++ {
		x += flat[i*stride]
		y += flat[i*stride+1]
	}
	return x / float64(n), y / float64(n), true
}
