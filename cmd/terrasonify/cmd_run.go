package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline in order",
	Long: `Run executes every stage in dependency order: prepare, features,
masks, zonal, vectorize, scan, render, reshape, tiles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stages := []*cobra.Command{
			prepareCmd, featuresCmd, masksCmd, zonalCmd,
			vectorizeCmd, scanCmd, renderCmd, reshapeCmd, tilesCmd,
		}
		for _, stage := range stages {
			logger.Info("running stage", zap.String("stage", stage.Name()))
			if err := stage.RunE(cmd, args); err != nil {
				return fmt.Errorf("%s: %w", stage.Name(), err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
