package main

import (
	"path/filepath"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/vectorize"
)

var flagContourInterval float64

var vectorizeCmd = &cobra.Command{
	Use:   "vectorize",
	Short: "Trace zone masks into GeoJSON polygons, centroids, contours and peaks",
	Long: `Vectorize turns each zone mask into polygon and centroid layers,
merges them into an all-zones collection, and adds DEM contour lines and
peak points.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now().UTC()

		zoneNames, zones, err := maskGrids()
		if err != nil {
			return err
		}
		dem, err := demGrid()
		if err != nil {
			return err
		}

		if err := ensureDir(cfg.Dirs.Vectors); err != nil {
			return err
		}
		layers := make(map[string]int)
		var outputs []string
		var zoneLayers []*geojson.FeatureCollection
		for _, zone := range zoneNames {
			traced := vectorize.Polygonize(zones[zone])
			polys := vectorize.Features(zone, traced)
			centroids := vectorize.Centroids(zone, traced)

			polyPath := filepath.Join(cfg.Dirs.Vectors, zone+"_zones.geojson")
			if err := vectorize.WriteGeoJSON(polyPath, polys); err != nil {
				return err
			}
			centroidPath := filepath.Join(cfg.Dirs.Vectors, zone+"_centroids.geojson")
			if err := vectorize.WriteGeoJSON(centroidPath, centroids); err != nil {
				return err
			}
			layers[zone] = len(polys.Features)
			layers[zone+"_centroids"] = len(centroids.Features)
			outputs = append(outputs, polyPath, centroidPath)
			zoneLayers = append(zoneLayers, polys)

			logger.Info("zone vectorized",
				zap.String("zone", zone),
				zap.Int("polygons", len(polys.Features)))
		}

		merged := vectorize.Merge(zoneLayers...)
		mergedPath := filepath.Join(cfg.Dirs.Vectors, "all_zones.geojson")
		if err := vectorize.WriteGeoJSON(mergedPath, merged); err != nil {
			return err
		}
		layers["all_zones"] = len(merged.Features)

		levels := vectorize.ContourLevels(dem, flagContourInterval)
		contours := vectorize.Contours(dem, levels)
		contourPath := filepath.Join(cfg.Dirs.Vectors, "contours.geojson")
		if err := vectorize.WriteGeoJSON(contourPath, contours); err != nil {
			return err
		}
		layers["contours"] = len(contours.Features)

		peaks := vectorize.Peaks(dem)
		peakPath := filepath.Join(cfg.Dirs.Vectors, "peaks.geojson")
		if err := vectorize.WriteGeoJSON(peakPath, peaks); err != nil {
			return err
		}
		layers["peaks"] = len(peaks.Features)
		outputs = append(outputs, mergedPath, contourPath, peakPath)

		logger.Info("vector layers written",
			zap.Int("contour_lines", len(contours.Features)),
			zap.Int("peaks", len(peaks.Features)),
			zap.Duration("took", time.Since(started)))

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		if err := vectorize.WriteMetadata(cfg.Dirs.Vectors, manifest.RunID,
			cfg.Raster.EPSG, layers, outputs); err != nil {
			return err
		}
		outputs = append(outputs, filepath.Join(cfg.Dirs.Vectors, "vector_metadata.json"))

		inputs := []string{gridPath(cfg.Dirs.Prepared, "dem")}
		for _, zone := range zoneNames {
			inputs = append(inputs, gridPath(cfg.Dirs.Masks, zone+"_mask"))
		}
		return record(manifest, "vectorize", started, inputs, outputs)
	},
}

func init() {
	vectorizeCmd.Flags().Float64Var(&flagContourInterval, "contour-interval", 10,
		"elevation spacing of contour lines")
	rootCmd.AddCommand(vectorizeCmd)
}
