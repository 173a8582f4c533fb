// Package mapper runs the map-building pipelines: fetch or compute a
// measurement per feature, classify it, and add a styled layer to a map.
//
// Provider failures for one feature are logged and the feature is skipped;
// the run continues with the next feature.
package mapper

import (
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/envmap-cli/internal/classify"
	"github.com/sells-group/envmap-cli/internal/feature"
	"github.com/sells-group/envmap-cli/internal/render"
)

// Summary reports the outcome of a pipeline run.
type Summary struct {
	Output  string
	Bytes   int64
	Plotted int
	Skipped int
}

// MapOptions controls the rendered page.
type MapOptions struct {
	Output string
	Title  string
	Tiles  string
	Zoom   int
	// Center overrides the pipeline's default center.
	Center *render.LatLon
	RunID  string
}

var printer = message.NewPrinter(language.English)

func (o MapOptions) newMap(defaultTitle string, center render.LatLon) *render.Map {
	title := o.Title
	if title == "" {
		title = defaultTitle
	}
	if o.Center != nil {
		center = *o.Center
	}
	m := render.New(title, center, o.Zoom)
	if o.Tiles != "" {
		m.Tiles = o.Tiles
	}
	m.RunID = o.RunID
	return m
}

// featureCenter is the mean center of features, or the zero position.
func featureCenter(features []feature.Feature) render.LatLon {
	lat, lon, ok := feature.MeanCenter(features)
	if !ok {
		return render.LatLon{}
	}
	return render.LatLon{Lat: lat, Lon: lon}
}

func legendFor(t *classify.Table) []render.LegendEntry {
	buckets := t.Buckets()
	out := make([]render.LegendEntry, len(buckets))
	for i, b := range buckets {
		out[i] = render.LegendEntry{Label: b.Label, Color: b.Color}
	}
	return out
}

func displayName(f feature.Feature) string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

func save(log *zap.Logger, m *render.Map, s Summary) (Summary, error) {
	n, err := m.Write(s.Output)
	if err != nil {
		return s, err
	}
	s.Bytes = n
	log.Info("map saved",
		zap.String("output", s.Output),
		zap.Int64("bytes", s.Bytes),
		zap.Int("plotted", s.Plotted),
		zap.Int("skipped", s.Skipped),
	)
	return s, nil
}
