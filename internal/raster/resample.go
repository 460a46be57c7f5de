package raster

// Resample produces a new grid with the given cell size covering the same
// extent, filled by nearest-neighbour lookup. A cell size equal to the
// current one returns a copy.
func (g *Grid) Resample(cellSize float64) *Grid {
	xmin, ymin, xmax, ymax := g.Extent()
	ncols := uint((xmax - xmin) / cellSize)
	nrows := uint((ymax - ymin) / cellSize)
	if ncols == 0 {
		ncols = 1
	}
	if nrows == 0 {
		nrows = 1
	}

	out := New(ncols, nrows, xmin, ymin, cellSize)
	out.NoDataValue = g.NoDataValue
	out.EPSG = g.EPSG

	for r := uint(0); r < nrows; r++ {
		for c := uint(0); c < ncols; c++ {
			srcC, srcR, ok := g.CellAt(out.X(c), out.Y(r))
			if !ok {
				out.Data[r][c] = g.NoDataValue
				continue
			}
			out.Data[r][c] = g.Data[srcR][srcC]
		}
	}
	return out
}
