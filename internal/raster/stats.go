package raster

import (
	"encoding/json"
	"math"
	"os"
	"sort"
)

// Extent describes the outer bounds of a grid.
type Extent struct {
	Xmin float64 `json:"xmin"`
	Xmax float64 `json:"xmax"`
	Ymin float64 `json:"ymin"`
	Ymax float64 `json:"ymax"`
}

// Stats holds the summary statistics of a grid's valid cells.
type Stats struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	ValidCells  int     `json:"valid_cells"`
	NoDataCells int     `json:"nodata_cells"`
	Width       uint    `json:"width"`
	Height      uint    `json:"height"`
	PixelSizeX  float64 `json:"pixel_size_x"`
	PixelSizeY  float64 `json:"pixel_size_y"`
	Extent      Extent  `json:"extent"`
	EPSG        int     `json:"epsg,omitempty"`
}

// ComputeStats summarizes the grid, skipping NoData cells.
func (g *Grid) ComputeStats() Stats {
	xmin, ymin, xmax, ymax := g.Extent()
	stats := Stats{
		Width:      g.Ncols,
		Height:     g.Nrows,
		PixelSizeX: g.CellSize,
		PixelSizeY: g.CellSize,
		Extent:     Extent{Xmin: xmin, Xmax: xmax, Ymin: ymin, Ymax: ymax},
		EPSG:       g.EPSG,
	}

	var sum, sumSq float64
	min := math.Inf(1)
	max := math.Inf(-1)
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			v := g.Data[r][c]
			if g.IsNoData(v) || math.IsInf(v, 0) {
				stats.NoDataCells++
				continue
			}
			stats.ValidCells++
			sum += v
			sumSq += v * v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	if stats.ValidCells == 0 {
		return stats
	}

	n := float64(stats.ValidCells)
	stats.Min = min
	stats.Max = max
	stats.Mean = sum / n
	variance := sumSq/n - stats.Mean*stats.Mean
	if variance > 0 {
		stats.StdDev = math.Sqrt(variance)
	}
	return stats
}

// SaveStats writes stats as an indented JSON file.
func SaveStats(stats Stats, path string) error {
	bytes, err := json.MarshalIndent(stats, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0o644)
}

// Percentile returns the p-th percentile (0..100) of the grid's valid
// cells using linear interpolation between closest ranks.
func (g *Grid) Percentile(p float64) (float64, bool) {
	vals := g.ValidValues()
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	if p <= 0 {
		return vals[0], true
	}
	if p >= 100 {
		return vals[len(vals)-1], true
	}
	rank := p / 100 * float64(len(vals)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return vals[lo], true
	}
	frac := rank - float64(lo)
	return vals[lo]*(1-frac) + vals[hi]*frac, true
}
