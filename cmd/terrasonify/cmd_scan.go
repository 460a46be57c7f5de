package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/raster"
	"github.com/marcoaccardi/terrasonify/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Extract scan-path time series from the DEM and feature rasters",
	Long: `Scan walks a straight path across the valid extent of the prepared
raster and samples elevation and every feature along it. It writes one
series CSV per feature, moving-average variants, a combined CSV aligned
on the elevation series, and gap-free clean series for the synth.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now().UTC()

		dem, err := demGrid()
		if err != nil {
			return err
		}
		names, err := featureNames()
		if err != nil {
			return err
		}
		features, err := featureGrids(names)
		if err != nil {
			return err
		}

		// Elevation scans first so the combined CSV aligns on it.
		seriesNames := append([]string{"elevation"}, names...)
		grids := map[string]*raster.Grid{"elevation": dem}
		for name, g := range features {
			grids[name] = g
		}

		dir := scan.Direction(cfg.Scan.Direction)
		pts, err := scan.GeneratePath(dem, dir, cfg.Scan.Points)
		if err != nil {
			return err
		}
		xmin, ymin, xmax, ymax := scan.ValidExtent(dem)
		logger.Info("scan path generated",
			zap.String("direction", string(dir)),
			zap.Int("points", len(pts)),
			zap.Float64("xmin", xmin),
			zap.Float64("xmax", xmax))

		if err := ensureDir(filepath.Join(cfg.Dirs.Series, "clean")); err != nil {
			return err
		}
		pathPoints := filepath.Join(cfg.Dirs.Series, "path_points.csv")
		if err := scan.WritePathPoints(pathPoints, pts); err != nil {
			return err
		}
		outputs := []string{pathPoints}

		var infos []scan.SeriesInfo
		series := make(map[string][]scan.Sample, len(seriesNames))
		cleanSeries := make(map[string][]scan.Sample, len(seriesNames))
		for _, name := range seriesNames {
			samples, validFraction := scan.Extract(grids[name], pts)
			series[name] = samples

			file := filepath.Join(cfg.Dirs.Series, name+"_series.csv")
			if err := scan.WriteSeriesCSV(file, samples); err != nil {
				return err
			}
			outputs = append(outputs, file)

			low := validFraction < scan.LowCoverageThreshold
			if low {
				logger.Warn("low scan coverage",
					zap.String("feature", name),
					zap.Float64("valid_fraction", validFraction))
			}
			infos = append(infos, scan.SeriesInfo{
				Feature:       name,
				File:          file,
				ValidPoints:   len(samples),
				TotalPoints:   len(pts),
				ValidFraction: validFraction,
				LowCoverage:   low,
			})

			for _, window := range cfg.Scan.Windows {
				avg := scan.MovingAverage(samples, window)
				avgFile := filepath.Join(cfg.Dirs.Series,
					fmt.Sprintf("%s_series_ma%d.csv", name, window))
				if err := scan.WriteSeriesWithAverage(avgFile, samples, avg); err != nil {
					return err
				}
				outputs = append(outputs, avgFile)
			}

			// The clean variant reads every path point since the raster
			// is gap-free after CleanForCSV.
			cleanSamples, _ := scan.Extract(grids[name].CleanForCSV(0), pts)
			cleanSeries[name] = cleanSamples
			cleanFile := filepath.Join(cfg.Dirs.Series, "clean", name+"_series.csv")
			if err := scan.WriteSeriesCSV(cleanFile, cleanSamples); err != nil {
				return err
			}
			outputs = append(outputs, cleanFile)
		}

		rows, err := scan.Combine(seriesNames, series)
		if err != nil {
			return err
		}
		combinedPath := filepath.Join(cfg.Dirs.Series, "combined_features.csv")
		if err := scan.WriteCombinedCSV(combinedPath, seriesNames, rows); err != nil {
			return err
		}
		cleanRows, err := scan.Combine(seriesNames, cleanSeries)
		if err != nil {
			return err
		}
		cleanCombinedPath := filepath.Join(cfg.Dirs.Series, "clean", "combined_features.csv")
		if err := scan.WriteCombinedCSV(cleanCombinedPath, seriesNames, cleanRows); err != nil {
			return err
		}
		outputs = append(outputs, combinedPath, cleanCombinedPath)

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		md := scan.Metadata{
			RunID:       manifest.RunID,
			Direction:   dir,
			PathPoints:  len(pts),
			Extent:      [4]float64{xmin, ymin, xmax, ymax},
			WindowSizes: cfg.Scan.Windows,
			Series:      infos,
			Files:       outputs,
		}
		mdPath := filepath.Join(cfg.Dirs.Series, "temporal_simulation_metadata.json")
		if err := md.Write(mdPath); err != nil {
			return err
		}
		outputs = append(outputs, mdPath)

		logger.Info("series extracted",
			zap.Int("series", len(seriesNames)),
			zap.Int("combined_rows", len(rows)),
			zap.Duration("took", time.Since(started)))

		inputs := []string{gridPath(cfg.Dirs.Prepared, "dem")}
		for _, name := range names {
			inputs = append(inputs, gridPath(cfg.Dirs.Features, name))
		}
		return record(manifest, "scan", started, inputs, outputs)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
