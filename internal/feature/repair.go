package feature

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// minRingCoords is the smallest closed ring: a triangle plus the closing point.
const minRingCoords = 4

// Repair returns a renderable copy of g. Open rings are closed, rings with too
// few coordinates or non-finite values are dropped, and polygons that lose
// their exterior ring are removed. Points must be valid lon/lat.
func Repair(g geom.T) (geom.T, error) {
	switch t := g.(type) {
	case *geom.Point:
		if t.Empty() || !ValidLatLon(t.Y(), t.X()) {
			return nil, eris.Wrap(ErrInvalidGeometry, "point out of range")
		}
		return geom.NewPointFlat(geom.XY, []float64{t.X(), t.Y()}).SetSRID(SRID), nil

	case *geom.Polygon:
		p := repairPolygon(t)
		if p == nil {
			return nil, eris.Wrap(ErrInvalidGeometry, "polygon has no usable exterior ring")
		}
		return p, nil

	case *geom.MultiPolygon:
		mp := geom.NewMultiPolygon(geom.XY).SetSRID(SRID)
		for i := 0; i < t.NumPolygons(); i++ {
			p := repairPolygon(t.Polygon(i))
			if p == nil {
				continue
			}
			if err := mp.Push(p); err != nil {
				continue
			}
		}
		if mp.NumPolygons() == 0 {
			return nil, eris.Wrap(ErrInvalidGeometry, "multipolygon has no usable polygons")
		}
		return mp, nil

	case nil:
		return nil, eris.Wrap(ErrInvalidGeometry, "nil geometry")

	default:
		return nil, eris.Wrapf(ErrInvalidGeometry, "unsupported geometry %T", g)
	}
}

func repairPolygon(p *geom.Polygon) *geom.Polygon {
	if p == nil || p.NumLinearRings() == 0 {
		return nil
	}

	out := geom.NewPolygon(geom.XY).SetSRID(SRID)
	for i := 0; i < p.NumLinearRings(); i++ {
		lr := p.LinearRing(i)
		flat := repairRing(lr.FlatCoords(), lr.Stride())
		if flat == nil {
			if i == 0 {
				return nil
			}
			continue
		}
		if err := out.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			if i == 0 {
				return nil
			}
		}
	}
	return out
}

// repairRing reduces a ring to XY, closes it and rejects degenerate rings.
func repairRing(flat []float64, stride int) []float64 {
	if stride < 2 || len(flat) < 2*stride {
		return nil
	}

	xy := make([]float64, 0, len(flat)/stride*2+2)
	for i := 0; i+1 < len(flat); i += stride {
		x, y := flat[i], flat[i+1]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return nil
		}
		xy = append(xy, x, y)
	}

	n := len(xy)
	if xy[0] != xy[n-2] || xy[1] != xy[n-1] {
		xy = append(xy, xy[0], xy[1])
	}
	if len(xy)/2 < minRingCoords {
		return nil
	}
	return xy
}
