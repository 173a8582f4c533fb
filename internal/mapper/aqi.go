package mapper

import (
	"context"
	"fmt"
	"html"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/envmap-cli/internal/classify"
	"github.com/sells-group/envmap-cli/internal/feature"
	"github.com/sells-group/envmap-cli/internal/render"
	"github.com/sells-group/envmap-cli/pkg/xweather"
)

// AQICenter is the default view: the Indian subcontinent.
var AQICenter = render.LatLon{Lat: 23, Lon: 82}

// AirQualitySource returns the current reading at a location.
type AirQualitySource interface {
	Fetch(ctx context.Context, lat, lon float64) (*xweather.Reading, error)
}

// AQI plots one circle marker per city, colored by AQI band.
type AQI struct {
	Source  AirQualitySource
	Table   *classify.Table
	Options MapOptions
}

// Run fetches a reading for every city and writes the map.
func (a *AQI) Run(ctx context.Context, cities []feature.Feature) (Summary, error) {
	log := zap.L().With(zap.String("component", "mapper.aqi"), zap.String("run_id", a.Options.RunID))

	m := a.Options.newMap("Real-time Air Quality", AQICenter)
	m.Legend = legendFor(a.Table)
	s := Summary{Output: a.Options.Output}

	for _, city := range cities {
		if err := ctx.Err(); err != nil {
			return s, eris.Wrap(err, "mapper: aqi run cancelled")
		}

		name := displayName(city)
		lat, lon, ok := city.Location()
		if !ok {
			log.Warn("skipping city without a point location", zap.String("city", name))
			s.Skipped++
			continue
		}

		reading, err := a.Source.Fetch(ctx, lat, lon)
		if err != nil {
			log.Warn("no AQI data", zap.String("city", name), zap.Error(err))
			s.Skipped++
			continue
		}

		res, err := a.Table.Classify(reading.AQI)
		if err != nil {
			return s, eris.Wrapf(err, "mapper: classify aqi for %s", name)
		}
		label := reading.Category
		if label == "" {
			label = res.Label
		}

		m.AddCircleMarker(render.CircleMarker{
			Lat:         lat,
			Lon:         lon,
			Radius:      8,
			Color:       "black",
			Weight:      1,
			FillColor:   res.Color,
			FillOpacity: 0.8,
			Tooltip:     aqiTooltip(name, reading.AQI, label),
		})
		s.Plotted++
		log.Info("city added", zap.String("city", name), zap.Float64("aqi", reading.AQI), zap.String("category", label))
	}

	return save(log, m, s)
}

func aqiTooltip(city string, aqi float64, category string) string {
	return fmt.Sprintf(`<div style="font-size:16px; font-weight:bold;">%s<br>AQI: %s<br>Category: %s</div>`,
		html.EscapeString(city), printer.Sprintf("%v", aqi), html.EscapeString(category))
}
