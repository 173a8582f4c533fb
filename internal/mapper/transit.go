package mapper

import (
	"context"
	"html"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/envmap-cli/internal/feature"
	"github.com/sells-group/envmap-cli/internal/render"
)

// ErrNoStops is returned when there is nothing to plot.
var ErrNoStops = eris.New("mapper: no valid data to plot")

// Transit plots clustered bus stop markers.
type Transit struct {
	Options MapOptions
}

// Run writes a clustered marker map of stops.
func (t *Transit) Run(ctx context.Context, stops []feature.Feature) (Summary, error) {
	log := zap.L().With(zap.String("component", "mapper.transit"), zap.String("run_id", t.Options.RunID))
	s := Summary{Output: t.Options.Output}

	var points []feature.Feature
	for _, stop := range stops {
		if _, _, ok := stop.Location(); !ok {
			log.Warn("skipping stop without a point location", zap.String("stop", displayName(stop)))
			s.Skipped++
			continue
		}
		points = append(points, stop)
	}
	if len(points) == 0 {
		return s, ErrNoStops
	}

	center := featureCenter(points)
	log.Info("map centered", zap.Float64("lat", center.Lat), zap.Float64("lon", center.Lon))

	m := t.Options.newMap("Transit Stops", center)
	m.Cluster = true

	for _, stop := range points {
		if err := ctx.Err(); err != nil {
			return s, eris.Wrap(err, "mapper: transit run cancelled")
		}
		lat, lon, _ := stop.Location()
		name := displayName(stop)
		m.AddMarker(render.Marker{
			Lat:   lat,
			Lon:   lon,
			Popup: html.EscapeString(name),
			Icon:  "bus",
			Color: "blue",
		})
		s.Plotted++
		log.Debug("stop added", zap.String("stop", name), zap.Float64("lat", lat), zap.Float64("lon", lon))
	}

	return save(log, m, s)
}
