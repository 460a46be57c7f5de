package render

import (
	"image"
	"image/color"
	"math"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Terrain-RGB packs elevation into the color channels:
//
//	height = -10000 + ((R*256*256 + G*256 + B) * 0.1)
//
// Solving for the packed integer x = 10*height + 100000 and writing x in
// base 256 gives R, G and B directly.

var maxPacked = int64(math.Pow(256, 3) - 1)

// HeightToRGB encodes a height into a Terrain-RGB color.
func HeightToRGB(height float64) color.NRGBA {
	x := int64(10*height+100000) % maxPacked

	b := uint8(x % 256)
	x /= 256
	g := uint8(x % 256)
	x /= 256
	r := uint8(x % 256)

	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// RGBToHeight decodes a Terrain-RGB color back into meters.
func RGBToHeight(c color.NRGBA) float64 {
	x := int64(c.R)*256*256 + int64(c.G)*256 + int64(c.B)
	return -10000.0 + float64(x)*0.1
}

// TerrainRGB renders the grid as a Terrain-RGB image. NoData cells are
// transparent.
func TerrainRGB(g *raster.Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, int(g.Ncols), int(g.Nrows)))
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			v := g.Data[r][c]
			if g.IsNoData(v) {
				continue
			}
			img.SetNRGBA(int(c), int(r), HeightToRGB(v))
		}
	}
	return img
}
