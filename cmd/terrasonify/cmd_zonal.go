package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/zonal"
)

var zonalCmd = &cobra.Command{
	Use:   "zonal",
	Short: "Summarize each feature raster inside each zone mask",
	Long: `Zonal crosses every mask zone with every feature raster and writes
the configured statistics: one CSV per zone plus a combined CSV over all
zones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now().UTC()

		stats := cfg.Zonal.Statistics
		if len(stats) == 0 {
			stats = zonal.DefaultStatistics
		}
		if err := zonal.ValidateStats(stats); err != nil {
			return err
		}

		zoneNames, zones, err := maskGrids()
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

		summaries, err := zonal.ComputeAll(zoneNames, zones, names, features)
		if err != nil {
			return err
		}

		if err := ensureDir(cfg.Dirs.Zonal); err != nil {
			return err
		}
		files := make(map[string]string, len(zoneNames)+1)
		outputs := make([]string, 0, len(zoneNames)+2)
		for _, zone := range zoneNames {
			path := filepath.Join(cfg.Dirs.Zonal, zone+"_statistics.csv")
			if err := zonal.WriteCSV(path, zonal.FilterZone(summaries, zone), stats); err != nil {
				return err
			}
			files[zone] = path
			outputs = append(outputs, path)
		}
		allPath := filepath.Join(cfg.Dirs.Zonal, "all_zones_statistics.csv")
		if err := zonal.WriteCSV(allPath, summaries, stats); err != nil {
			return err
		}
		files["all"] = allPath
		outputs = append(outputs, allPath)

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		metaPath := filepath.Join(cfg.Dirs.Zonal, "zonal_statistics_metadata.json")
		if err := zonal.WriteMetadata(metaPath, manifest.RunID, stats, zoneNames, names, files); err != nil {
			return err
		}
		outputs = append(outputs, metaPath)

		logger.Info("zonal statistics written",
			zap.Int("zones", len(zoneNames)),
			zap.Int("features", len(names)),
			zap.Int("rows", len(summaries)),
			zap.Duration("took", time.Since(started)))

		inputs := make([]string, 0, len(zoneNames)+len(names))
		for _, zone := range zoneNames {
			inputs = append(inputs, gridPath(cfg.Dirs.Masks, zone+"_mask"))
		}
		for _, name := range names {
			inputs = append(inputs, gridPath(cfg.Dirs.Features, name))
		}
		return record(manifest, "zonal", started, inputs, outputs)
	},
}

func init() {
	rootCmd.AddCommand(zonalCmd)
}
