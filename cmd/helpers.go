package main

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/envmap-cli/internal/classify"
	"github.com/sells-group/envmap-cli/internal/config"
	"github.com/sells-group/envmap-cli/internal/feature"
	"github.com/sells-group/envmap-cli/internal/fetcher"
	"github.com/sells-group/envmap-cli/internal/mapper"
	"github.com/sells-group/envmap-cli/internal/render"
)

// lookupTable resolves a table name against the built-in and configured tables.
func lookupTable(name string) (*classify.Table, error) {
	tables, err := classify.LoadFile(cfg.TablesFile)
	if err != nil {
		return nil, err
	}
	return tables.Lookup(name)
}

func newRouter() fetcher.Router {
	return fetcher.Router{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.Fetch.Timeout(),
			MaxBytes:  cfg.Fetch.MaxBytes(),
			RateLimit: cfg.Fetch.RateLimit,
		}),
		FTP: fetcher.NewFTPFetcher(fetcher.FTPOptions{
			Timeout:  cfg.Fetch.Timeout(),
			MaxBytes: cfg.Fetch.MaxBytes(),
		}),
	}
}

func httpClient(timeoutSecs int) *http.Client {
	return &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second}
}

// addMapFlags registers the flags shared by every map command.
func addMapFlags(cmd *cobra.Command, withTable bool) {
	cmd.Flags().String("out", "", "output HTML path (default: from config)")
	cmd.Flags().String("tiles", "", "tile preset: "+strings.Join(render.TilePresets(), ", "))
	cmd.Flags().Int("zoom", -1, "initial zoom level (default: from config)")
	if withTable {
		cmd.Flags().String("table", "", "breakpoint table name (default: from config)")
	}
}

// applyMapFlags overlays explicitly set map flags onto mc.
func applyMapFlags(cmd *cobra.Command, mc *config.MapConfig) {
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		mc.Output = v
	}
	if v, _ := cmd.Flags().GetString("tiles"); v != "" {
		mc.Tiles = v
	}
	if v, _ := cmd.Flags().GetInt("zoom"); v >= 0 {
		mc.Zoom = v
	}
	if f := cmd.Flags().Lookup("table"); f != nil && f.Value.String() != "" {
		mc.Table = f.Value.String()
	}
}

// mapOptions converts a map section into renderer options. A zero lat/lon
// leaves the pipeline's own default center in place.
func mapOptions(mc config.MapConfig) mapper.MapOptions {
	opts := mapper.MapOptions{
		Output: mc.Output,
		Tiles:  mc.Tiles,
		Zoom:   mc.Zoom,
		RunID:  runID,
	}
	if mc.Lat != 0 || mc.Lon != 0 {
		opts.Center = &render.LatLon{Lat: mc.Lat, Lon: mc.Lon}
	}
	return opts
}

// addPointFlags registers the column flags of a point table source.
func addPointFlags(cmd *cobra.Command) {
	cmd.Flags().String("name-column", "name", "point table column holding the display name")
	cmd.Flags().String("lat-column", "lat", "point table column holding the latitude")
	cmd.Flags().String("lon-column", "lon", "point table column holding the longitude")
	cmd.Flags().String("sheet", "", "XLSX sheet name (default: first sheet)")
}

func pointOptions(cmd *cobra.Command) feature.PointOptions {
	name, _ := cmd.Flags().GetString("name-column")
	lat, _ := cmd.Flags().GetString("lat-column")
	lon, _ := cmd.Flags().GetString("lon-column")
	sheet, _ := cmd.Flags().GetString("sheet")
	return feature.PointOptions{NameColumn: name, LatColumn: lat, LonColumn: lon, Sheet: sheet}
}

// loadPoints reads a point table from a local path or URL. ZIP archives must
// contain a .csv file.
func loadPoints(ctx context.Context, src string, opts feature.PointOptions) ([]feature.Feature, error) {
	wantExt := ".csv"
	if ext := strings.ToLower(filepath.Ext(src)); ext == ".xlsx" {
		wantExt = ext
	}
	path, err := feature.Resolve(ctx, src, cfg.Fetch.TempDir, wantExt, newRouter())
	if err != nil {
		return nil, err
	}
	points, err := feature.ReadPoints(path, opts)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, eris.Errorf("no valid points in %s", src)
	}
	return points, nil
}
