package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/envmap-cli/internal/feature"
	"github.com/sells-group/envmap-cli/internal/mapper"
	"github.com/sells-group/envmap-cli/pkg/elevation"
)

var elevationCmd = &cobra.Command{
	Use:   "elevation <shapefile>",
	Short: "Map mean elevation per polygon zone",
	Long: `Reads polygon zones from a WGS84 shapefile (local path, http(s)/ftp URL, or a
.zip containing one), samples each zone against an OpenTopoData elevation
dataset, and shades it by its mean elevation.

Shapefiles in a projected coordinate system are rejected; reproject them to
EPSG:4326 first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyMapFlags(cmd, &cfg.Elevation.MapConfig)
		if v, _ := cmd.Flags().GetString("name-field"); v != "" {
			cfg.Elevation.NameField = v
		}
		if v, _ := cmd.Flags().GetInt("samples"); v > 0 {
			cfg.Elevation.Samples = v
		}
		if err := cfg.Validate("elevation"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "elevation"), zap.String("run_id", runID))

		table, err := lookupTable(cfg.Elevation.Table)
		if err != nil {
			return eris.Wrap(err, "elevation")
		}

		shpPath, err := feature.Resolve(ctx, args[0], cfg.Fetch.TempDir, ".shp", newRouter())
		if err != nil {
			return eris.Wrap(err, "elevation: resolve shapefile")
		}
		idField, _ := cmd.Flags().GetString("id-field")
		zones, err := feature.ReadShapefile(shpPath, feature.ShapefileOptions{
			NameField: cfg.Elevation.NameField,
			IDField:   idField,
		})
		if err != nil {
			return eris.Wrap(err, "elevation: read zones")
		}

		client := elevation.NewClient(
			elevation.WithBaseURL(cfg.ElevationAPI.BaseURL),
			elevation.WithDataset(cfg.ElevationAPI.Dataset),
			elevation.WithBatchSize(cfg.ElevationAPI.BatchSize),
			elevation.WithHTTPClient(httpClient(cfg.ElevationAPI.TimeoutSecs)),
			elevation.WithRateLimit(cfg.ElevationAPI.RateLimit),
		)

		log.Info("starting elevation map",
			zap.String("shapefile", shpPath),
			zap.Int("zones", len(zones)),
			zap.String("dataset", cfg.ElevationAPI.Dataset),
			zap.Int("samples", cfg.Elevation.Samples),
		)

		p := &mapper.Elevation{
			Client:  client,
			Table:   table,
			Samples: cfg.Elevation.Samples,
			Options: mapOptions(cfg.Elevation.MapConfig),
		}
		s, err := p.Run(ctx, zones)
		if err != nil {
			return eris.Wrap(err, "elevation")
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Map saved as %s (%d zones plotted, %d skipped)\n", s.Output, s.Plotted, s.Skipped)
		return nil
	},
}

func init() {
	addMapFlags(elevationCmd, true)
	elevationCmd.Flags().String("name-field", "", "attribute holding the zone name (default: from config)")
	elevationCmd.Flags().String("id-field", "", "attribute holding the zone id (default: record number)")
	elevationCmd.Flags().Int("samples", 0, "grid samples per zone (default: from config)")
	rootCmd.AddCommand(elevationCmd)
}
