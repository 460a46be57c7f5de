package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcoaccardi/terrasonify/internal/render"
)

var flagRenderPyramid bool

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the rasters as color relief, hillshade and grayscale PNGs",
	Long: `Render paints the prepared DEM and every feature raster: color
relief for all of them, plus hillshade, grayscale, Terrain-RGB and a
preview set for the elevation. NoData cells are transparent.`,
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

		var ramp render.Ramp
		if cfg.Render.ColorTable != "" {
			ramp, err = render.LoadColorTable(cfg.Render.ColorTable)
			if err != nil {
				return err
			}
		}

		if err := ensureDir(cfg.Dirs.Renders); err != nil {
			return err
		}
		var outputs []string
		relief := render.ColorRelief(dem, ramp)
		reliefPath := filepath.Join(cfg.Dirs.Renders, "elevation_relief.png")
		if err := render.SavePNG(reliefPath, relief); err != nil {
			return err
		}
		outputs = append(outputs, reliefPath)

		shade := render.Hillshade(dem, cfg.Render.Azimuth, cfg.Render.Altitude, cfg.Render.ZFactor)
		shadePath := filepath.Join(cfg.Dirs.Renders, "elevation_hillshade.png")
		if err := render.SavePNG(shadePath, shade); err != nil {
			return err
		}
		grayPath := filepath.Join(cfg.Dirs.Renders, "elevation_grayscale.png")
		if err := render.SavePNG(grayPath, render.Grayscale(dem)); err != nil {
			return err
		}
		rgbPath := filepath.Join(cfg.Dirs.Renders, "elevation_terrainrgb.png")
		if err := render.SavePNG(rgbPath, render.TerrainRGB(dem)); err != nil {
			return err
		}
		outputs = append(outputs, shadePath, grayPath, rgbPath)

		previews, err := render.WritePreviews(relief, cfg.Dirs.Renders, "elevation_relief")
		if err != nil {
			return err
		}
		outputs = append(outputs, previews...)

		for _, name := range names {
			g := features[name]
			featRelief := filepath.Join(cfg.Dirs.Renders, name+"_relief.png")
			if err := render.SavePNG(featRelief, render.ColorRelief(g, ramp)); err != nil {
				return err
			}
			featGray := filepath.Join(cfg.Dirs.Renders, name+"_grayscale.png")
			if err := render.SavePNG(featGray, render.Grayscale(g)); err != nil {
				return err
			}
			outputs = append(outputs, featRelief, featGray)
			logger.Debug("feature rendered", zap.String("feature", name))
		}

		if flagRenderPyramid {
			pyramidDir := filepath.Join(cfg.Dirs.Renders, "pyramid")
			maxZoom, err := render.BuildPyramid(relief, pyramidDir)
			if err != nil {
				return err
			}
			outputs = append(outputs, pyramidDir)
			logger.Info("raster pyramid built",
				zap.String("dir", pyramidDir),
				zap.Uint8("max_zoom", maxZoom))
		}

		logger.Info("renders written",
			zap.Int("files", len(outputs)),
			zap.Duration("took", time.Since(started)))

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		inputs := []string{gridPath(cfg.Dirs.Prepared, "dem")}
		for _, name := range names {
			inputs = append(inputs, gridPath(cfg.Dirs.Features, name))
		}
		return record(manifest, "render", started, inputs, outputs)
	},
}

func init() {
	renderCmd.Flags().BoolVar(&flagRenderPyramid, "pyramid", false,
		"also build a z/x/y PNG tile pyramid of the relief")
	rootCmd.AddCommand(renderCmd)
}
