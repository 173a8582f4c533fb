package feature

import (
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/envmap-cli/internal/fetcher"
)

// PointOptions names the columns of a point table. Empty names fall back to
// id, name, lat and lon.
type PointOptions struct {
	IDColumn   string
	NameColumn string
	LatColumn  string
	LonColumn  string
	Sheet      string // XLSX only; first sheet when empty
}

func (o PointOptions) withDefaults() PointOptions {
	if o.IDColumn == "" {
		o.IDColumn = "id"
	}
	if o.NameColumn == "" {
		o.NameColumn = "name"
	}
	if o.LatColumn == "" {
		o.LatColumn = "lat"
	}
	if o.LonColumn == "" {
		o.LonColumn = "lon"
	}
	return o
}

// ReadPoints reads point features from a .csv or .xlsx table whose first row
// is a header. Rows with bad coordinates are logged and skipped.
func ReadPoints(path string, opts PointOptions) ([]Feature, error) {
	tbl, err := fetcher.ReadTable(path, fetcher.TableOptions{Sheet: opts.Sheet})
	if err != nil {
		return nil, eris.Wrap(err, "feature: read point table")
	}
	return pointsFromTable(tbl, opts.withDefaults(), path)
}

func pointsFromTable(tbl *fetcher.Table, opts PointOptions, source string) ([]Feature, error) {
	log := zap.L().With(zap.String("component", "feature.points"), zap.String("path", source))

	latIdx, lonIdx := tbl.Column(opts.LatColumn), tbl.Column(opts.LonColumn)
	if latIdx < 0 || lonIdx < 0 {
		return nil, eris.Errorf("feature: %s needs %q and %q columns", source, opts.LatColumn, opts.LonColumn)
	}
	nameIdx, idIdx := tbl.Column(opts.NameColumn), tbl.Column(opts.IDColumn)

	cell := func(row []string, i int) string {
		if i >= 0 && i < len(row) {
			return row[i]
		}
		return ""
	}

	var features []Feature
	for n, row := range tbl.Rows {
		lat, lon, err := ParseLatLon(cell(row, latIdx), cell(row, lonIdx))
		if err != nil {
			log.Warn("feature: skipping row", zap.Int("row", n+1), zap.Error(err))
			continue
		}

		id := strconv.Itoa(n + 1)
		if v := cell(row, idIdx); v != "" {
			id = v
		}
		name := id
		if v := cell(row, nameIdx); v != "" {
			name = v
		}

		f := NewPoint(id, name, lat, lon)
		f.Properties = make(map[string]string, len(tbl.Header))
		for i, h := range tbl.Header {
			f.Properties[h] = cell(row, i)
		}
		features = append(features, f)
	}

	log.Info("point table loaded", zap.Int("features", len(features)), zap.Int("rows", len(tbl.Rows)))
	return features, nil
}
