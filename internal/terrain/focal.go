// Package terrain derives terrain features from elevation grids: slope,
// aspect, roughness, TPI, TRI, curvature, wetness index and spectral
// entropy. The kernels follow the standard definitions (Horn 1981,
// Zevenbergen & Thorne 1987, Wilson et al. 2007) so outputs line up with
// what common GIS tooling produces for the same inputs.
package terrain

import "github.com/marcoaccardi/terrasonify/internal/raster"

// window holds a 3x3 neighborhood in row-major order:
//
//	0 1 2
//	3 4 5
//	6 7 8
type window [9]float64

// neighborhood collects the 3x3 window around (c, r) with edge
// replication, so edge cells still produce a value. ok is false when any
// cell of the window is NoData.
func neighborhood(g *raster.Grid, c, r uint) (window, bool) {
	var w window
	i := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			cc := clampIndex(int(c)+dc, int(g.Ncols)-1)
			rr := clampIndex(int(r)+dr, int(g.Nrows)-1)
			v := g.Data[rr][cc]
			if g.IsNoData(v) {
				return w, false
			}
			w[i] = v
			i++
		}
	}
	return w, true
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// focal applies fn to every cell's 3x3 neighborhood. Cells whose window
// touches NoData stay NoData in the output.
func focal(g *raster.Grid, fn func(w window) (float64, bool)) *raster.Grid {
	out := raster.NewLike(g)
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			w, ok := neighborhood(g, c, r)
			if !ok {
				continue
			}
			if v, ok := fn(w); ok {
				out.Data[r][c] = v
			}
		}
	}
	return out
}

// horn returns the Horn finite-difference gradient at a window.
// dzdx is positive when the surface rises eastward, dzdy when it rises
// northward.
func horn(w window, cellSize float64) (dzdx, dzdy float64) {
	dzdx = ((w[2] + 2*w[5] + w[8]) - (w[0] + 2*w[3] + w[6])) / (8 * cellSize)
	dzdy = ((w[0] + 2*w[1] + w[2]) - (w[6] + 2*w[7] + w[8])) / (8 * cellSize)
	return
}
