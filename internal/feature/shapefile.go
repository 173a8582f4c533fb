package feature

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ErrProjectedCRS is returned for shapefiles whose .prj declares a projected
// coordinate system. Only geographic lon/lat input is supported.
var ErrProjectedCRS = eris.New("feature: shapefile uses a projected CRS")

// ShapefileOptions selects the attribute columns used for feature identity.
type ShapefileOptions struct {
	NameField string // required; matched case-insensitively
	IDField   string // optional; record number when empty
}

// ReadShapefile reads every record of a shapefile into features. Records
// without a shape or with an unrepairable geometry are logged and skipped.
func ReadShapefile(shpPath string, opts ShapefileOptions) ([]Feature, error) {
	log := zap.L().With(zap.String("component", "feature.shapefile"), zap.String("path", shpPath))

	if err := checkProjection(shpPath); err != nil {
		return nil, err
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "feature: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	names := make([]string, len(fields))
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		names[i] = name
		fieldIdx[strings.ToLower(name)] = i
	}

	nameIdx, ok := fieldIdx[strings.ToLower(opts.NameField)]
	if !ok {
		return nil, eris.Errorf("feature: name field %q not found (available: %s)", opts.NameField, strings.Join(names, ", "))
	}
	idIdx := -1
	if opts.IDField != "" {
		idIdx, ok = fieldIdx[strings.ToLower(opts.IDField)]
		if !ok {
			return nil, eris.Errorf("feature: id field %q not found", opts.IDField)
		}
	}

	var features []Feature
	var skipped int

	for reader.Next() {
		n, shape := reader.Shape()

		attrs := make(map[string]string, len(names))
		for i, name := range names {
			attrs[name] = strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		}

		id := strconv.Itoa(n)
		if idIdx >= 0 {
			id = attrs[names[idIdx]]
		}
		name := attrs[names[nameIdx]]

		g := shapeToGeom(shape)
		if g == nil {
			log.Warn("feature: skipping record without usable shape", zap.Int("record", n), zap.String("name", name))
			skipped++
			continue
		}
		repaired, err := Repair(g)
		if err != nil {
			log.Warn("feature: skipping invalid geometry", zap.Int("record", n), zap.String("name", name), zap.Error(err))
			skipped++
			continue
		}

		features = append(features, Feature{
			ID:         id,
			Name:       name,
			Geometry:   repaired,
			Properties: attrs,
		})
	}

	log.Info("shapefile loaded", zap.Int("features", len(features)), zap.Int("skipped", skipped))
	return features, nil
}

// checkProjection rejects shapefiles whose .prj sidecar is a projected CRS.
// A missing .prj is assumed to be WGS84.
func checkProjection(shpPath string) error {
	base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
	for _, ext := range []string{".prj", ".PRJ"} {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			continue
		}
		wkt := strings.ToUpper(strings.TrimSpace(string(data)))
		if strings.HasPrefix(wkt, "PROJCS") || strings.HasPrefix(wkt, "PROJCRS") {
			return eris.Wrapf(ErrProjectedCRS, "%s (reproject to EPSG:4326 first)", base+ext)
		}
		return nil
	}
	return nil
}

// shapeToGeom converts a go-shp shape into a 2D go-geom geometry; Z and M
// values are dropped. Returns nil for unsupported or empty shapes.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		if s == nil {
			return nil
		}
		return xyPoint(s.X, s.Y)
	case *shp.PointZ:
		if s == nil {
			return nil
		}
		return xyPoint(s.X, s.Y)
	case *shp.PointM:
		if s == nil {
			return nil
		}
		return xyPoint(s.X, s.Y)
	case *shp.Polygon:
		if s == nil {
			return nil
		}
		return polygonToMultiPolygon(s.Parts, s.Points)
	case *shp.PolygonZ:
		if s == nil {
			return nil
		}
		return polygonToMultiPolygon(s.Parts, s.Points)
	case *shp.PolygonM:
		if s == nil {
			return nil
		}
		return polygonToMultiPolygon(s.Parts, s.Points)
	default:
		return nil
	}
}

func xyPoint(x, y float64) geom.T {
	return geom.NewPointFlat(geom.XY, []float64{x, y}).SetSRID(SRID)
}

// polygonToMultiPolygon converts shapefile polygon parts to a geom.MultiPolygon.
// Shapefile outer rings wind clockwise and holes counter-clockwise; each hole
// is attached to the outer ring preceding it.
func polygonToMultiPolygon(parts []int32, points []shp.Point) geom.T {
	if len(parts) == 0 || len(points) == 0 {
		return nil
	}
	numParts := int32(len(parts))

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(SRID)
	var current *geom.Polygon

	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("feature: skipping malformed polygon part", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < numParts; i++ {
		start := parts[i]
		end := int32(len(points))
		if i+1 < numParts {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || start >= end {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, points[j].X, points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current != nil && signedArea(flat) > 0 {
			// Counter-clockwise: hole of the current polygon.
			if err := current.Push(ring); err != nil {
				zap.L().Debug("feature: skipping malformed hole", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		flush()
		current = geom.NewPolygon(geom.XY).SetSRID(SRID)
		if err := current.Push(ring); err != nil {
			zap.L().Debug("feature: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			current = nil
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace area of an XY ring: positive when counter-clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
