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
	"github.com/sells-group/envmap-cli/pkg/xweather"
)

var aqiCmd = &cobra.Command{
	Use:   "aqi",
	Short: "Map real-time air quality for a list of cities",
	Long: `Fetches the current air quality index for each city from Xweather and plots a
circle marker colored by AQI band. Cities without data are skipped.

Uses a built-in list of Indian and neighbouring cities unless --cities names a
CSV/XLSX table (local path, http(s) or ftp URL, or a .zip containing a .csv).
Credentials come from ENVMAP_XWEATHER_CLIENT_ID and ENVMAP_XWEATHER_CLIENT_SECRET.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyMapFlags(cmd, &cfg.AQI)
		if err := cfg.Validate("aqi"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "aqi"), zap.String("run_id", runID))

		table, err := lookupTable(cfg.AQI.Table)
		if err != nil {
			return eris.Wrap(err, "aqi")
		}

		cities := feature.DefaultCities()
		if src, _ := cmd.Flags().GetString("cities"); src != "" {
			cities, err = loadPoints(ctx, src, pointOptions(cmd))
			if err != nil {
				return eris.Wrap(err, "aqi: load cities")
			}
		}

		client := xweather.NewClient(cfg.Xweather.ClientID, cfg.Xweather.ClientSecret,
			xweather.WithBaseURL(cfg.Xweather.BaseURL),
			xweather.WithHTTPClient(httpClient(cfg.Xweather.TimeoutSecs)),
			xweather.WithRateLimit(cfg.Xweather.RateLimit),
		)

		log.Info("starting AQI map", zap.Int("cities", len(cities)), zap.String("table", table.Name()))

		p := &mapper.AQI{Source: client, Table: table, Options: mapOptions(cfg.AQI)}
		s, err := p.Run(ctx, cities)
		if err != nil {
			return eris.Wrap(err, "aqi")
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Map saved as %s (%d cities plotted, %d skipped)\n", s.Output, s.Plotted, s.Skipped)
		return nil
	},
}

func init() {
	addMapFlags(aqiCmd, true)
	addPointFlags(aqiCmd)
	aqiCmd.Flags().String("cities", "", "CSV/XLSX table of cities (default: built-in list)")
	rootCmd.AddCommand(aqiCmd)
}
