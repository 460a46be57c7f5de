package render

import (
	"image"
	"image/color"
	"math"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Hillshade options; the defaults model the conventional northwest sun.
const (
	DefaultAzimuth  = 315.0
	DefaultAltitude = 45.0
)

// Hillshade renders shaded relief lit from azimuth/altitude degrees.
// Cells whose neighborhood touches NoData come out transparent.
func Hillshade(g *raster.Grid, azimuth, altitude, zFactor float64) *image.NRGBA {
	if zFactor == 0 {
		zFactor = 1
	}
	zenith := (90 - altitude) * math.Pi / 180
	azRad := azimuth * math.Pi / 180

	img := image.NewNRGBA(image.Rect(0, 0, int(g.Ncols), int(g.Nrows)))
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			dzdx, dzdy, ok := hornGradient(g, c, r)
			if !ok {
				continue
			}
			slope := math.Atan(zFactor * math.Hypot(dzdx, dzdy))
			// Azimuth of the downslope direction, clockwise from north,
			// matching how the sun azimuth is given.
			aspect := math.Atan2(-dzdx, -dzdy)

			shade := math.Cos(zenith)*math.Cos(slope) +
				math.Sin(zenith)*math.Sin(slope)*math.Cos(azRad-aspect)
			if shade < 0 {
				shade = 0
			}
			v := uint8(255*shade + 0.5)
			img.SetNRGBA(int(c), int(r), color.NRGBA{v, v, v, 255})
		}
	}
	return img
}

// hornGradient returns the Horn gradient at a cell with edge
// replication. ok is false when the 3x3 window touches NoData.
func hornGradient(g *raster.Grid, c, r uint) (dzdx, dzdy float64, ok bool) {
	var w [9]float64
	i := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			cc := clamp(int(c)+dc, int(g.Ncols)-1)
			rr := clamp(int(r)+dr, int(g.Nrows)-1)
			v := g.Data[rr][cc]
			if g.IsNoData(v) {
				return 0, 0, false
			}
			w[i] = v
			i++
		}
	}
	dzdx = ((w[2] + 2*w[5] + w[8]) - (w[0] + 2*w[3] + w[6])) / (8 * g.CellSize)
	dzdy = ((w[0] + 2*w[1] + w[2]) - (w[6] + 2*w[7] + w[8])) / (8 * g.CellSize)
	return dzdx, dzdy, true
}

func clamp(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
