package raster

import "math"

// isMarker reports whether v matches the NoData marker itself, ignoring
// the NaN shortcut in IsNoData. NaN and Inf cells inside valid data are a
// different defect and get repaired, not masked.
func (g *Grid) isMarker(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	return math.Abs(v-g.NoDataValue) <= 1e-8+1e-5*math.Abs(g.NoDataValue)
}

// Clean returns a copy of the grid prepared for sonification. NaN and Inf
// values inside the valid-data region are replaced with defaultValue while
// the NoData pattern is left untouched, so the spatial distribution of
// valid vs. missing cells survives.
func (g *Grid) Clean(defaultValue float64) *Grid {
	out := NewLike(g)
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			v := g.Data[r][c]
			switch {
			case g.isMarker(v):
				out.Data[r][c] = g.NoDataValue
			case math.IsInf(v, 0) || math.IsNaN(v):
				out.Data[r][c] = defaultValue
			default:
				out.Data[r][c] = v
			}
		}
	}
	return out
}

// CleanForCSV returns a gap-free copy: NoData, NaN and Inf cells all become
// defaultValue and the NoData marker is moved out of the data range, so
// every cell reads as valid. Used for the time-series extraction feeding
// the synth.
func (g *Grid) CleanForCSV(defaultValue float64) *Grid {
	out := NewLike(g)
	max := math.Inf(-1)
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			v := g.Data[r][c]
			if g.isMarker(v) || math.IsInf(v, 0) || math.IsNaN(v) {
				v = defaultValue
			}
			out.Data[r][c] = v
			if v > max {
				max = v
			}
		}
	}
	if math.IsInf(max, -1) {
		max = 0
	}
	// pick a marker that cannot collide with the data
	out.NoDataValue = max + 1e6
	return out
}
