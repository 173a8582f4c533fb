package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/envmap-cli/internal/config"
)

var (
	cfg   *config.Config
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "envmap",
	Short: "Build interactive environmental maps",
	Long: `Classifies environmental measurements against breakpoint tables and renders
the results as self-contained Leaflet HTML maps: real-time air quality for a list
of cities, mean elevation per polygon zone, and clustered transit stops.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if tf, _ := cmd.Flags().GetString("tables-file"); tf != "" {
			cfg.TablesFile = tf
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		runID = uuid.NewString()
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("tables-file", "", "YAML file with extra or overriding breakpoint tables")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
