package render

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Grayscale renders the grid with linear min-max scaling to 0..255.
// NoData cells are transparent.
func Grayscale(g *raster.Grid) *image.NRGBA {
	stats := g.ComputeStats()
	span := stats.Max - stats.Min

	img := image.NewNRGBA(image.Rect(0, 0, int(g.Ncols), int(g.Nrows)))
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			v := g.Data[r][c]
			if g.IsNoData(v) {
				continue
			}
			scaled := uint8(0)
			if span > 0 {
				scaled = uint8(255*(v-stats.Min)/span + 0.5)
			}
			img.SetNRGBA(int(c), int(r), color.NRGBA{scaled, scaled, scaled, 255})
		}
	}
	return img
}

// SavePNG writes an image as PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
