package main

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/tiles"
	"github.com/marcoaccardi/terrasonify/internal/vectorize"
)

var tilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Build a vector tile pyramid from the zone and contour layers",
	Long: `Tiles encodes the vectorized layers into a gzipped Mapbox vector
tile pyramid under z/x/y.pbf, plus the tile.json descriptor map viewers
read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now().UTC()

		zoneNames, _, err := maskGrids()
		if err != nil {
			return err
		}
		dem, err := demGrid()
		if err != nil {
			return err
		}

		collections := make(map[string]*geojson.FeatureCollection)
		var inputs []string
		load := func(layer, file string) error {
			path := filepath.Join(cfg.Dirs.Vectors, file)
			fc, err := vectorize.ReadGeoJSON(path)
			if err != nil {
				return err
			}
			collections[layer] = fc
			inputs = append(inputs, path)
			return nil
		}
		for _, zone := range zoneNames {
			if err := load(zone, zone+"_zones.geojson"); err != nil {
				return err
			}
			if err := load(zone+"_centroids", zone+"_centroids.geojson"); err != nil {
				return err
			}
		}
		if err := load("contours", "contours.geojson"); err != nil {
			return err
		}
		if err := load("peaks", "peaks.geojson"); err != nil {
			return err
		}

		maxZoom := tiles.MaxZoomFor(dem)
		if cfg.Tiles.MaxZoom != nil {
			maxZoom = *cfg.Tiles.MaxZoom
		}
		settings := make([]tiles.LayerSetting, len(cfg.Tiles.Settings))
		for i, s := range cfg.Tiles.Settings {
			settings[i] = tiles.LayerSetting{Layer: s.Layer, MinZoom: s.MinZoom, MaxZoom: s.MaxZoom}
		}

		if err := ensureDir(cfg.Dirs.Tiles); err != nil {
			return err
		}
		box := tiles.WorldBoxFor(dem)
		if err := tiles.Build(cfg.Dirs.Tiles, collections, maxZoom, box, settings); err != nil {
			return err
		}

		layerNames := make([]string, 0, len(collections))
		for name := range collections {
			layerNames = append(layerNames, name)
		}
		sort.Strings(layerNames)
		if err := tiles.WriteTileJSON(cfg.Dirs.Tiles, cfg.Dataset, maxZoom, layerNames); err != nil {
			return err
		}

		logger.Info("vector tiles built",
			zap.Uint8("max_zoom", maxZoom),
			zap.Strings("layers", layerNames),
			zap.Duration("took", time.Since(started)))

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		outputs := []string{cfg.Dirs.Tiles, filepath.Join(cfg.Dirs.Tiles, "tile.json")}
		return record(manifest, "tiles", started, inputs, outputs)
	},
}

func init() {
	rootCmd.AddCommand(tilesCmd)
}
