package terrain

import (
	"math"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Slope returns the slope in degrees using Horn's method. zFactor scales
// vertical units relative to horizontal ones (1 for meters over meters).
func Slope(g *raster.Grid, zFactor float64) *raster.Grid {
	return focal(g, func(w window) (float64, bool) {
		dzdx, dzdy := horn(w, g.CellSize)
		rise := zFactor * math.Hypot(dzdx, dzdy)
		return math.Atan(rise) * 180 / math.Pi, true
	})
}

// Aspect returns the compass direction of steepest descent in degrees,
// clockwise from north. Flat cells have no defined aspect and stay NoData.
func Aspect(g *raster.Grid) *raster.Grid {
	return focal(g, func(w window) (float64, bool) {
		dzdx, dzdy := horn(w, g.CellSize)
		if dzdx == 0 && dzdy == 0 {
			return 0, false
		}
		// Downslope vector is the negated gradient; azimuth is measured
		// from the north axis toward east.
		az := math.Atan2(-dzdx, -dzdy) * 180 / math.Pi
		return math.Mod(az+360, 360), true
	})
}

// Roughness returns the largest absolute difference between a cell and
// its eight neighbors.
func Roughness(g *raster.Grid) *raster.Grid {
	return focal(g, func(w window) (float64, bool) {
		max := 0.0
		for i, v := range w {
			if i == 4 {
				continue
			}
			if d := math.Abs(v - w[4]); d > max {
				max = d
			}
		}
		return max, true
	})
}

// TPI returns the Topographic Position Index: the cell elevation minus
// the mean of its eight neighbors. Positive on ridges, negative in
// valleys.
func TPI(g *raster.Grid) *raster.Grid {
	return focal(g, func(w window) (float64, bool) {
		sum := 0.0
		for i, v := range w {
			if i == 4 {
				continue
			}
			sum += v
		}
		return w[4] - sum/8, true
	})
}

// TRI returns the Terrain Ruggedness Index after Wilson et al. (2007):
// the mean absolute difference between a cell and its eight neighbors.
func TRI(g *raster.Grid) *raster.Grid {
	return focal(g, func(w window) (float64, bool) {
		sum := 0.0
		for i, v := range w {
			if i == 4 {
				continue
			}
			sum += math.Abs(v - w[4])
		}
		return sum / 8, true
	})
}
