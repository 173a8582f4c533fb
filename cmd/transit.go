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
)

var transitCmd = &cobra.Command{
	Use:   "transit",
	Short: "Map transit stops as clustered bus markers",
	Long: `Plots bus stops as clustered markers on a light basemap. Uses twelve sample San
Francisco stops unless --stops names a CSV/XLSX table with id, name, lat and lon
columns.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyMapFlags(cmd, &cfg.Transit)
		if err := cfg.Validate("transit"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "transit"), zap.String("run_id", runID))

		stops := feature.SampleStops()
		if src, _ := cmd.Flags().GetString("stops"); src != "" {
			var err error
			stops, err = loadPoints(ctx, src, pointOptions(cmd))
			if err != nil {
				return eris.Wrap(err, "transit: load stops")
			}
		}
		log.Info("starting transit map", zap.Int("stops", len(stops)))

		p := &mapper.Transit{Options: mapOptions(cfg.Transit)}
		s, err := p.Run(ctx, stops)
		if err != nil {
			return eris.Wrap(err, "transit")
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Map saved as %s (%d bytes, %d stops)\n", s.Output, s.Bytes, s.Plotted)
		return nil
	},
}

func init() {
	addMapFlags(transitCmd, false)
	addPointFlags(transitCmd)
	transitCmd.Flags().String("stops", "", "CSV/XLSX table of stops (default: sample stops)")
	rootCmd.AddCommand(transitCmd)
}
