package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/meta"
	"github.com/marcoaccardi/terrasonify/internal/scan"
)

var (
	flagReshapeImage  string
	flagReshapeWidth  int
	flagReshapeHeight int
)

var reshapeCmd = &cobra.Command{
	Use:   "reshape",
	Short: "Reshape the clean series into grid-ordered sonification CSVs",
	Long: `Reshape maps the clean combined series onto the pixel lattice of a
rendered image and writes the full-grid CSV (one row per pixel, columns
advancing outermost), the column-aggregated CSV (per-column feature
medians), and a column-wise reordering of the combined series.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now().UTC()

		combinedPath := filepath.Join(cfg.Dirs.Series, "clean", "combined_features.csv")
		if err := meta.RequireFiles("scan", combinedPath); err != nil {
			return err
		}
		names, rows, err := scan.ReadCombinedCSV(combinedPath)
		if err != nil {
			return err
		}

		width, height := flagReshapeWidth, flagReshapeHeight
		switch {
		case flagReshapeImage != "":
			width, height, err = scan.ImageDims(flagReshapeImage)
			if err != nil {
				return err
			}
		case width <= 0 || height <= 0:
			// Default to the relief render so the CSV matches the image
			// the performer sees.
			relief := filepath.Join(cfg.Dirs.Renders, "elevation_relief.png")
			if err := meta.RequireFiles("render", relief); err != nil {
				return err
			}
			width, height, err = scan.ImageDims(relief)
			if err != nil {
				return err
			}
		}

		dem, err := demGrid()
		if err != nil {
			return err
		}
		xmin, ymin, xmax, ymax := dem.Extent()

		fullPath := filepath.Join(cfg.Dirs.Series, "full_grid.csv")
		if err := scan.WriteFullGridCSV(fullPath, names, rows,
			width, height, xmin, ymin, xmax, ymax); err != nil {
			return err
		}
		aggPath := filepath.Join(cfg.Dirs.Series, "column_aggregated.csv")
		if err := scan.WriteColumnAggregatedCSV(aggPath, names, rows,
			width, xmin, xmax); err != nil {
			return err
		}

		scan.SortColumnwise(rows)
		columnwisePath := filepath.Join(cfg.Dirs.Series, "combined_features_columnwise.csv")
		if err := scan.WriteCombinedCSV(columnwisePath, names, rows); err != nil {
			return err
		}

		logger.Info("reshaped series written",
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Int("rows", len(rows)),
			zap.Duration("took", time.Since(started)))

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		return record(manifest, "reshape", started,
			[]string{combinedPath},
			[]string{fullPath, aggPath, columnwisePath})
	},
}

func init() {
	reshapeCmd.Flags().StringVar(&flagReshapeImage, "image", "",
		"reference PNG whose dimensions shape the full grid")
	reshapeCmd.Flags().IntVar(&flagReshapeWidth, "width", 0, "grid width in pixels")
	reshapeCmd.Flags().IntVar(&flagReshapeHeight, "height", 0, "grid height in pixels")
	rootCmd.AddCommand(reshapeCmd)
}
