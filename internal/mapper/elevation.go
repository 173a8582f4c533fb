package mapper

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/envmap-cli/internal/classify"
	"github.com/sells-group/envmap-cli/internal/feature"
	"github.com/sells-group/envmap-cli/internal/render"
	"github.com/sells-group/envmap-cli/internal/zonal"
	"github.com/sells-group/envmap-cli/pkg/elevation"
)

// Elevation shades each zone by its mean elevation.
type Elevation struct {
	Client  elevation.Client
	Table   *classify.Table
	Samples int
	Options MapOptions
}

// Run computes the zonal mean of every zone and writes the map.
func (e *Elevation) Run(ctx context.Context, zones []feature.Feature) (Summary, error) {
	log := zap.L().With(zap.String("component", "mapper.elevation"), zap.String("run_id", e.Options.RunID))

	m := e.Options.newMap("Mean Elevation", featureCenter(zones))
	m.Legend = legendFor(e.Table)
	s := Summary{Output: e.Options.Output}

	for _, zone := range zones {
		if err := ctx.Err(); err != nil {
			return s, eris.Wrap(err, "mapper: elevation run cancelled")
		}
		name := displayName(zone)

		mean, n, err := zonal.MeanElevation(ctx, e.Client, zone.Geometry, e.Samples)
		if err != nil {
			if errors.Is(err, zonal.ErrNoData) {
				log.Warn("no elevation data", zap.String("zone", name))
			} else {
				log.Warn("elevation lookup failed", zap.String("zone", name), zap.Error(err))
			}
			s.Skipped++
			continue
		}

		res, err := e.Table.Classify(mean)
		if err != nil {
			return s, eris.Wrapf(err, "mapper: classify elevation for %s", name)
		}

		err = m.AddPolygon(render.Polygon{
			Geometry: zone.Geometry,
			Style: render.Style{
				FillColor:   res.Color,
				Color:       "black",
				Weight:      2,
				FillOpacity: 0.4,
			},
			Tooltip: elevationTooltip(name, mean),
		})
		if err != nil {
			log.Warn("skipping zone", zap.String("zone", name), zap.Error(err))
			s.Skipped++
			continue
		}
		s.Plotted++
		log.Debug("zone added", zap.String("zone", name), zap.Float64("mean", mean), zap.Int("samples", n), zap.String("class", res.Label))
	}

	return save(log, m, s)
}

func elevationTooltip(zone string, mean float64) string {
	return fmt.Sprintf(`<div style="font-size: 18px; font-weight: bold; color: #333;">Zone: %s<br>Mean Elevation: %s meters</div>`,
		html.EscapeString(zone), printer.Sprintf("%.2f", mean))
}
