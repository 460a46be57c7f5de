// Command terrasonify turns a digital elevation model into
// sonification material: it prepares the DEM, derives terrain feature
// rasters, cuts zone masks, summarizes them, vectorizes zones and
// contours, extracts scan-path time series for the synth, and renders
// map imagery and vector tiles for preview.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/config"
	"github.com/marcoaccardi/terrasonify/internal/logging"
)

var (
	flagConfig  string
	flagVerbose bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "terrasonify",
	Short:         "Terrain analysis pipeline feeding audio synthesis",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(flagVerbose)
		if err != nil {
			return err
		}
		cfg, err = config.Load(flagConfig)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		fmt.Sprintf("config file (default %s, or $%s)", config.DefaultPath, config.EnvConfigPath))
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("stage failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
