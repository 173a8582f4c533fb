// Package render writes self-contained Leaflet HTML maps.
//
// Layers are added one feature at a time; each call copies its style so a
// feature's appearance is fixed when it is added. Render embeds all layer data
// as JSON in a single html/template page.
package render

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Tile presets.
const (
	TilesOpenStreetMap   = "openstreetmap"
	TilesCartoDBPositron = "cartodb_positron"
)

type tileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	Subdomains  string `json:"subdomains,omitempty"`
	MaxZoom     int    `json:"maxZoom"`
}

var tilePresets = map[string]tileLayer{
	TilesOpenStreetMap: {
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		MaxZoom:     19,
	},
	TilesCartoDBPositron: {
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Subdomains:  "abcd",
		MaxZoom:     20,
	},
}

// TilePresets returns the names of the supported tile presets.
func TilePresets() []string {
	return []string{TilesOpenStreetMap, TilesCartoDBPositron}
}

// LatLon is a map position.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Style is the Leaflet path style of a polygon.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Polygon is an area layer. Tooltip is trusted HTML.
type Polygon struct {
	Geometry geom.T
	Style    Style
	Tooltip  string
}

// CircleMarker is a fixed-radius point layer. Tooltip is trusted HTML.
type CircleMarker struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Tooltip     string  `json:"tooltip,omitempty"`
}

// Marker is an icon pin. Icon names a Font Awesome glyph and Color one of the
// awesome-markers colors (red, blue, green, ...). Popup is trusted HTML.
type Marker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Popup   string  `json:"popup,omitempty"`
	Tooltip string  `json:"tooltip,omitempty"`
	Icon    string  `json:"icon"`
	Color   string  `json:"color"`
}

// LegendEntry is one swatch of the map legend.
type LegendEntry struct {
	Label string
	Color string
}

// Map collects layers for a single HTML page.
type Map struct {
	Title   string
	Center  LatLon
	Zoom    int
	Tiles   string
	Legend  []LegendEntry
	RunID   string
	Cluster bool // cluster markers with Leaflet.markercluster

	polygons []*geojson.Feature
	circles  []CircleMarker
	markers  []Marker
}

// New creates a map with OpenStreetMap tiles.
func New(title string, center LatLon, zoom int) *Map {
	return &Map{
		Title:  title,
		Center: center,
		Zoom:   zoom,
		Tiles:  TilesOpenStreetMap,
	}
}

// AddPolygon adds an area layer. The geometry must be GeoJSON-encodable.
func (m *Map) AddPolygon(p Polygon) error {
	if p.Geometry == nil {
		return eris.New("render: polygon has no geometry")
	}
	if _, err := geojson.Encode(p.Geometry); err != nil {
		return eris.Wrap(err, "render: encode polygon")
	}
	m.polygons = append(m.polygons, &geojson.Feature{
		Geometry: p.Geometry,
		Properties: map[string]interface{}{
			"style":   p.Style,
			"tooltip": p.Tooltip,
		},
	})
	return nil
}

// AddCircleMarker adds a circle marker layer.
func (m *Map) AddCircleMarker(c CircleMarker) {
	m.circles = append(m.circles, c)
}

// AddMarker adds an icon marker layer.
func (m *Map) AddMarker(mk Marker) {
	if mk.Icon == "" {
		mk.Icon = "info-sign"
	}
	if mk.Color == "" {
		mk.Color = "blue"
	}
	m.markers = append(m.markers, mk)
}

// Len is the number of layers added so far.
func (m *Map) Len() int {
	return len(m.polygons) + len(m.circles) + len(m.markers)
}

type layerData struct {
	Tiles    tileLayer                  `json:"tiles"`
	Center   [2]float64                 `json:"center"`
	Zoom     int                        `json:"zoom"`
	Cluster  bool                       `json:"cluster"`
	Polygons *geojson.FeatureCollection `json:"polygons"`
	Circles  []CircleMarker             `json:"circles"`
	Markers  []Marker                   `json:"markers"`
}

type pageData struct {
	Title   string
	RunID   string
	Legend  []LegendEntry
	Cluster bool
	Markers bool
	Data    template.JS
}

// Render writes the HTML page to w.
func (m *Map) Render(w io.Writer) error {
	tiles, ok := tilePresets[m.Tiles]
	if !ok {
		return eris.Errorf("render: unknown tile preset %q", m.Tiles)
	}

	data := layerData{
		Tiles:    tiles,
		Center:   [2]float64{m.Center.Lat, m.Center.Lon},
		Zoom:     m.Zoom,
		Cluster:  m.Cluster,
		Polygons: &geojson.FeatureCollection{Features: m.polygons},
		Circles:  m.circles,
		Markers:  m.markers,
	}
	if data.Polygons.Features == nil {
		data.Polygons.Features = []*geojson.Feature{}
	}
	if data.Circles == nil {
		data.Circles = []CircleMarker{}
	}
	if data.Markers == nil {
		data.Markers = []Marker{}
	}

	js, err := json.Marshal(data)
	if err != nil {
		return eris.Wrap(err, "render: marshal layers")
	}

	page := pageData{
		Title:   m.Title,
		RunID:   m.RunID,
		Legend:  m.Legend,
		Cluster: m.Cluster,
		Markers: len(m.markers) > 0,
		Data:    template.JS(js),
	}
	if err := pageTemplate.Execute(w, page); err != nil {
		return eris.Wrap(err, "render: execute template")
	}
	return nil
}

// Write renders the map to path atomically and returns the file size.
func (m *Map) Write(path string) (int64, error) {
	var buf bytes.Buffer
	if err := m.Render(&buf); err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, eris.Wrap(err, "render: create output dir")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, eris.Wrap(err, "render: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return 0, eris.Wrap(err, "render: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return 0, eris.Wrap(err, "render: close temp file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, eris.Wrap(err, "render: chmod output")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, eris.Wrap(err, "render: rename output")
	}
	return int64(buf.Len()), nil
}
