package terrain

import (
	"math"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// entropyBins returns the histogram resolution for a scale. Coarser
// scales use fewer bins.
func entropyBins(scale int) int {
	bins := 256 / scale
	if bins < 2 {
		bins = 2
	}
	return bins
}

// GlobalEntropy returns the normalized Shannon entropy of the elevation
// histogram over all valid cells, in [0, 1]. Returns false when the grid
// has no valid cells or no relief.
func GlobalEntropy(g *raster.Grid, scale int) (float64, bool) {
	values := g.ValidValues()
	if len(values) == 0 {
		return 0, false
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return 0, false
	}
	bins := entropyBins(scale)
	return histogramEntropy(values, min, max, bins), true
}

// Entropy returns a spectral-entropy raster: for each cell, the
// normalized Shannon entropy of the elevation histogram in a square
// window of half-width scale. Bins follow the global elevation range so
// values are comparable across cells. Smooth neighborhoods score near 0,
// varied ones near 1.
func Entropy(g *raster.Grid, scale int) *raster.Grid {
	out := raster.NewLike(g)
	values := g.ValidValues()
	if len(values) == 0 {
		return out
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		for r := uint(0); r < g.Nrows; r++ {
			for c := uint(0); c < g.Ncols; c++ {
				if !g.IsNoData(g.Data[r][c]) {
					out.Data[r][c] = 0
				}
			}
		}
		return out
	}

	bins := entropyBins(scale)
	ncols, nrows := int(g.Ncols), int(g.Nrows)
	win := make([]float64, 0, (2*scale+1)*(2*scale+1))
	for r := 0; r < nrows; r++ {
		for c := 0; c < ncols; c++ {
			if g.IsNoData(g.Data[r][c]) {
				continue
			}
			win = win[:0]
			for rr := r - scale; rr <= r+scale; rr++ {
				if rr < 0 || rr >= nrows {
					continue
				}
				for cc := c - scale; cc <= c+scale; cc++ {
					if cc < 0 || cc >= ncols {
						continue
					}
					if v := g.Data[rr][cc]; !g.IsNoData(v) {
						win = append(win, v)
					}
				}
			}
			out.Data[r][c] = histogramEntropy(win, min, max, bins)
		}
	}
	return out
}

// histogramEntropy bins values over [min, max] and returns the Shannon
// entropy of the bin probabilities, normalized by log2 of the occupied
// bin count so a spread over k distinct levels scores 1 regardless of
// the histogram resolution. Zero when one bin holds everything.
func histogramEntropy(values []float64, min, max float64, bins int) float64 {
	counts := make([]int, bins)
	span := max - min
	for _, v := range values {
		b := int(float64(bins) * (v - min) / span)
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
	}
	total := float64(len(values))
	occupied := 0
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		occupied++
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	if occupied <= 1 {
		return 0
	}
	return h / math.Log2(float64(occupied))
}
