// Package feature models geographic features and reads them from shapefiles,
// point tables and remote archives.
package feature

import (
	"math"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// SRID of every feature geometry (WGS84 lon/lat).
const SRID = 4326

// ErrInvalidGeometry is returned when a geometry cannot be repaired into
// something renderable.
var ErrInvalidGeometry = eris.New("feature: invalid geometry")

// Feature is a geometry with an identifier, a display name and raw attributes.
type Feature struct {
	ID         string
	Name       string
	Geometry   geom.T
	Properties map[string]string
}

// NewPoint builds a point feature from a latitude/longitude pair.
func NewPoint(id, name string, lat, lon float64) Feature {
	return Feature{
		ID:       id,
		Name:     name,
		Geometry: geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(SRID),
	}
}

// Location returns the latitude and longitude of a point feature.
func (f Feature) Location() (lat, lon float64, ok bool) {
	p, isPoint := f.Geometry.(*geom.Point)
	if !isPoint || p.Empty() {
		return 0, 0, false
	}
	return p.Y(), p.X(), true
}

// Center returns the midpoint of g's bounding box as latitude, longitude.
func Center(g geom.T) (lat, lon float64) {
	b := g.Bounds()
	return (b.Min(1) + b.Max(1)) / 2, (b.Min(0) + b.Max(0)) / 2
}

// MeanCenter averages the centers of all features. ok is false for an empty slice.
func MeanCenter(features []Feature) (lat, lon float64, ok bool) {
	var n int
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		cLat, cLon := Center(f.Geometry)
		lat += cLat
		lon += cLon
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return lat / float64(n), lon / float64(n), true
}

// ValidLatLon reports whether lat/lon are finite and within WGS84 range.
func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ParseLatLon parses decimal degree strings.
func ParseLatLon(latStr, lonStr string) (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "feature: parse latitude %q", latStr)
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "feature: parse longitude %q", lonStr)
	}
	if !ValidLatLon(lat, lon) {
		return 0, 0, eris.Errorf("feature: coordinate (%v, %v) out of range", lat, lon)
	}
	return lat, lon, nil
}
