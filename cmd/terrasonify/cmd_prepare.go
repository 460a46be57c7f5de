package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/meta"
	"github.com/marcoaccardi/terrasonify/internal/raster"
)

var flagPrepareInput string

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Load the source DEM and write the normalized working raster",
	Long: `Prepare reads the source DEM (Esri ASCII grid, gzipped or not, or
NetCDF), optionally resamples it to the configured cell size, and writes
the working raster plus its statistics. Every later stage reads the
prepared raster, never the source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now().UTC()

		input := flagPrepareInput
		if input == "" {
			found, err := findSourceDEM(cfg.Dirs.Input)
			if err != nil {
				return err
			}
			input = found
		}
		if !meta.IsFile(input) {
			return fmt.Errorf("source DEM %s does not exist", input)
		}

		grid, err := readSourceDEM(input)
		if err != nil {
			return err
		}
		grid.EPSG = cfg.Raster.EPSG
		logger.Info("source DEM loaded",
			zap.String("path", input),
			zap.Uint("cols", grid.Ncols),
			zap.Uint("rows", grid.Nrows),
			zap.Float64("cell_size", grid.CellSize))

		if cfg.Raster.CellSize > 0 && cfg.Raster.CellSize != grid.CellSize {
			grid = grid.Resample(cfg.Raster.CellSize)
			logger.Info("resampled",
				zap.Float64("cell_size", grid.CellSize),
				zap.Uint("cols", grid.Ncols),
				zap.Uint("rows", grid.Nrows))
		}

		if err := ensureDir(cfg.Dirs.Prepared); err != nil {
			return err
		}
		demPath := gridPath(cfg.Dirs.Prepared, "dem")
		if err := grid.WriteFile(demPath); err != nil {
			return err
		}

		stats := grid.ComputeStats()
		statsPath := filepath.Join(cfg.Dirs.Prepared, "dem_statistics.json")
		if err := raster.SaveStats(stats, statsPath); err != nil {
			return err
		}
		logger.Info("prepared raster written",
			zap.String("path", demPath),
			zap.Int("valid_cells", stats.ValidCells),
			zap.Int("nodata_cells", stats.NoDataCells),
			zap.Float64("min", stats.Min),
			zap.Float64("max", stats.Max))

		// Prepare starts a fresh run: a new ID, a new manifest.
		manifest := meta.NewManifest(manifestDir(), cfg.Dataset)
		return record(manifest, "prepare", started, []string{input}, []string{demPath, statsPath})
	},
}

func init() {
	prepareCmd.Flags().StringVar(&flagPrepareInput, "in", "",
		"source DEM path (default: first .asc/.asc.gz/.nc file in the input dir)")
	rootCmd.AddCommand(prepareCmd)
}

// findSourceDEM picks the first recognizable DEM in dir.
func findSourceDEM(dir string) (string, error) {
	if !meta.IsDirectory(dir) {
		return "", fmt.Errorf("input directory %s does not exist", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".asc") || strings.HasSuffix(name, ".asc.gz") ||
			strings.HasSuffix(name, ".nc") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("no .asc, .asc.gz or .nc file in %s", dir)
}

func readSourceDEM(path string) (*raster.Grid, error) {
	if strings.HasSuffix(path, ".nc") {
		return raster.ReadNetCDF(path, cfg.Raster.NetCDFVar)
	}
	return raster.Read(path)
}
