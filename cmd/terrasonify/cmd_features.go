package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/raster"
	"github.com/marcoaccardi/terrasonify/internal/terrain"
	"github.com/marcoaccardi/terrasonify/internal/vectorize"
)

// samplePointsPerAxis sizes the probe lattice of the feature point
// overview.
const samplePointsPerAxis = 50

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Derive terrain feature rasters from the prepared DEM",
	Long: `Features computes slope, aspect, roughness, TPI, TRI, curvature,
TWI and spectral entropy from the prepared raster. Each feature is
written as its own raster with statistics, plus a sampled point overview
of all features together.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now().UTC()

		dem, err := demGrid()
		if err != nil {
			return err
		}

		opts := terrain.DefaultOptions()
		if cfg.Terrain.ZFactor > 0 {
			opts.ZFactor = cfg.Terrain.ZFactor
		}
		if len(cfg.Terrain.EntropyScales) > 0 {
			opts.EntropyScales = cfg.Terrain.EntropyScales
		}

		logger.Info("deriving features",
			zap.Strings("features", opts.Names()),
			zap.Float64("z_factor", opts.ZFactor))
		features := terrain.Derive(dem, opts)

		if err := ensureDir(filepath.Join(cfg.Dirs.Features, "stats")); err != nil {
			return err
		}

		names := opts.Names()
		outputs := make([]string, 0, 2*len(names)+3)
		allStats := make(map[string]raster.Stats, len(names))
		for _, name := range names {
			g := features[name]
			path := gridPath(cfg.Dirs.Features, name)
			if err := g.WriteFile(path); err != nil {
				return err
			}
			stats := g.ComputeStats()
			allStats[name] = stats
			statsPath := filepath.Join(cfg.Dirs.Features, name+"_statistics.json")
			if err := raster.SaveStats(stats, statsPath); err != nil {
				return err
			}
			outputs = append(outputs, path, statsPath)
			logger.Debug("feature written",
				zap.String("feature", name),
				zap.Float64("min", stats.Min),
				zap.Float64("max", stats.Max),
				zap.Int("valid_cells", stats.ValidCells))
		}

		allStatsPath := filepath.Join(cfg.Dirs.Features, "stats", "all_features_stats.json")
		if err := writeJSON(allStatsPath, allStats); err != nil {
			return err
		}

		// Whole-grid entropy scalars complement the windowed rasters.
		globalEntropy := make(map[string]float64, len(opts.EntropyScales))
		for _, scale := range opts.EntropyScales {
			if h, ok := terrain.GlobalEntropy(dem, scale); ok {
				globalEntropy[fmt.Sprintf("spectral_entropy_scale%d", scale)] = h
			}
		}
		entropyPath := filepath.Join(cfg.Dirs.Features, "stats", "global_entropy.json")
		if err := writeJSON(entropyPath, globalEntropy); err != nil {
			return err
		}
		outputs = append(outputs, entropyPath)
		listPath := filepath.Join(cfg.Dirs.Features, "feature_list.json")
		if err := writeJSON(listPath, names); err != nil {
			return err
		}

		points := vectorize.SampleGrid(dem, names, features, samplePointsPerAxis)
		pointsPath := filepath.Join(cfg.Dirs.Features, "feature_points.geojson")
		if err := vectorize.WriteGeoJSON(pointsPath, points); err != nil {
			return err
		}
		outputs = append(outputs, allStatsPath, listPath, pointsPath)

		logger.Info("features derived",
			zap.Int("count", len(names)),
			zap.Int("sample_points", len(points.Features)),
			zap.Duration("took", time.Since(started)))

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		return record(manifest, "features", started,
			[]string{gridPath(cfg.Dirs.Prepared, "dem")}, outputs)
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
