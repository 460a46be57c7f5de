package terrain

import (
	"math"
	"sort"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// minTanBeta keeps the wetness index finite on flat cells.
const minTanBeta = 0.001

var d8Offsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// TWI returns the Topographic Wetness Index ln(a / tan β), where a is
// the specific catchment area from single-direction (D8) flow routing
// and β the local slope. Wet accumulation zones score high, drained
// ridges low.
func TWI(g *raster.Grid) *raster.Grid {
	ncols, nrows := int(g.Ncols), int(g.Nrows)
	n := ncols * nrows

	// Flow direction: index of the steepest downslope neighbor, -1 for
	// pits, edge outlets and NoData cells.
	flowTo := make([]int, n)
	type cell struct {
		idx int
		z   float64
	}
	order := make([]cell, 0, n)
	for r := 0; r < nrows; r++ {
		for c := 0; c < ncols; c++ {
			idx := r*ncols + c
			flowTo[idx] = -1
			z := g.Data[r][c]
			if g.IsNoData(z) {
				continue
			}
			order = append(order, cell{idx, z})
			best := 0.0
			for _, off := range d8Offsets {
				cc, rr := c+off[0], r+off[1]
				if cc < 0 || cc >= ncols || rr < 0 || rr >= nrows {
					continue
				}
				nz := g.Data[rr][cc]
				if g.IsNoData(nz) {
					continue
				}
				dist := g.CellSize
				if off[0] != 0 && off[1] != 0 {
					dist *= math.Sqrt2
				}
				drop := (z - nz) / dist
				if drop > best {
					best = drop
					flowTo[idx] = rr*ncols + cc
				}
			}
		}
	}

	// Accumulate cell counts from high to low; every cell contributes
	// itself plus everything routed through it.
	sort.Slice(order, func(i, j int) bool { return order[i].z > order[j].z })
	accum := make([]float64, n)
	for i := range accum {
		accum[i] = 1
	}
	for _, cl := range order {
		if to := flowTo[cl.idx]; to >= 0 {
			accum[to] += accum[cl.idx]
		}
	}

	slope := Slope(g, 1)
	out := raster.NewLike(g)
	cellArea := g.CellSize * g.CellSize
	for r := 0; r < nrows; r++ {
		for c := 0; c < ncols; c++ {
			if g.IsNoData(g.Data[r][c]) {
				continue
			}
			sd := slope.Data[r][c]
			if slope.IsNoData(sd) {
				continue
			}
			tanBeta := math.Tan(sd * math.Pi / 180)
			if tanBeta < minTanBeta {
				tanBeta = minTanBeta
			}
			// Specific catchment area: accumulated area per unit
			// contour width.
			a := accum[r*ncols+c] * cellArea / g.CellSize
			out.Data[r][c] = math.Log(a / tanBeta)
		}
	}
	return out
}
