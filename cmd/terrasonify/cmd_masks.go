package main

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/mask"
)

var masksCmd = &cobra.Command{
	Use:   "masks",
	Short: "Build binary zone masks from the feature rasters",
	Long: `Masks cuts binary zone rasters (ridge, valley, erosion by default,
or the zones named in the config) by thresholding feature rasters at
percentiles of their own distributions. Each mask is written together
with a gap-free clean variant for sonification.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now().UTC()

		defs := maskDefinitions()
		needed := map[string]bool{}
		for _, def := range defs {
			for _, cond := range def.Conditions {
				needed[cond.Feature] = true
			}
		}
		names := make([]string, 0, len(needed))
		for name := range needed {
			names = append(names, name)
		}
		sort.Strings(names)
		features, err := featureGrids(names)
		if err != nil {
			return err
		}

		manifest, err := loadManifest()
		if err != nil {
			return err
		}

		if err := ensureDir(cfg.Dirs.Masks); err != nil {
			return err
		}
		entries := make([]mask.Entry, 0, len(defs))
		outputs := make([]string, 0, 2*len(defs)+1)
		for _, def := range defs {
			res, err := mask.Build(def, features)
			if err != nil {
				return err
			}

			path := gridPath(cfg.Dirs.Masks, def.Name+"_mask")
			if err := res.Grid.WriteFile(path); err != nil {
				return err
			}
			cleanPath := gridPath(cfg.Dirs.Masks, def.Name+"_mask_clean")
			if err := res.Grid.CleanForCSV(0).WriteFile(cleanPath); err != nil {
				return err
			}
			entries = append(entries, mask.Entry{Result: res, Path: path, CleanPath: cleanPath})
			outputs = append(outputs, path, cleanPath)

			logger.Info("mask built",
				zap.String("mask", def.Name),
				zap.Uint("pixels", res.PixelCount),
				zap.Float64("area_pct", res.AreaPct))
		}

		metaPath := filepath.Join(cfg.Dirs.Masks, "mask_metadata.json")
		if err := mask.WriteMetadata(metaPath, manifest.RunID, entries); err != nil {
			return err
		}
		outputs = append(outputs, metaPath)

		inputs := make([]string, len(names))
		for i, name := range names {
			inputs[i] = gridPath(cfg.Dirs.Features, name)
		}
		return record(manifest, "masks", started, inputs, outputs)
	},
}

func init() {
	rootCmd.AddCommand(masksCmd)
}
