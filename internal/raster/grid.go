package raster

import "math"

// DefaultNoData is used when a source does not declare a NoData value.
const DefaultNoData = -9999.0

// Grid represents a single-band raster in Esri ASCII grid layout.
// Row 0 is the northernmost row, matching the on-disk order.
type Grid struct {
	Ncols, Nrows uint
	Xllcorner    float64
	Yllcorner    float64
	CellSize     float64
	NoDataValue  float64
	// EPSG carries the declared coordinate system. It is metadata only;
	// no reprojection happens anywhere in the pipeline.
	EPSG int
	Data [][]float64
}

// New allocates a grid with every cell set to the NoData value.
func New(ncols, nrows uint, xll, yll, cellSize float64) *Grid {
	g := &Grid{
		Ncols:       ncols,
		Nrows:       nrows,
		Xllcorner:   xll,
		Yllcorner:   yll,
		CellSize:    cellSize,
		NoDataValue: DefaultNoData,
		Data:        make([][]float64, nrows),
	}
	for r := range g.Data {
		row := make([]float64, ncols)
		for c := range row {
			row[c] = g.NoDataValue
		}
		g.Data[r] = row
	}
	return g
}

// NewLike allocates a NoData-filled grid with the same shape and
// georeferencing as ref.
func NewLike(ref *Grid) *Grid {
	g := New(ref.Ncols, ref.Nrows, ref.Xllcorner, ref.Yllcorner, ref.CellSize)
	g.NoDataValue = ref.NoDataValue
	g.EPSG = ref.EPSG
	for r := range g.Data {
		for c := range g.Data[r] {
			g.Data[r][c] = g.NoDataValue
		}
	}
	return g
}

// Dims returns the dimensions of the grid.
func (g *Grid) Dims() (c, r uint) {
	return g.Ncols, g.Nrows
}

// Z returns the grid value at (c, r).
// It will panic if c or r are out of bounds for the grid.
func (g *Grid) Z(c, r uint) float64 {
	return g.Data[r][c]
}

// X returns the cell-center x coordinate for column c.
func (g *Grid) X(c uint) float64 {
	return g.Xllcorner + (float64(c)+0.5)*g.CellSize
}

// Y returns the cell-center y coordinate for row r.
func (g *Grid) Y(r uint) float64 {
	return g.Yllcorner + (float64(g.Nrows)-float64(r)-0.5)*g.CellSize
}

// Extent returns the outer bounds of the grid.
func (g *Grid) Extent() (xmin, ymin, xmax, ymax float64) {
	xmin = g.Xllcorner
	ymin = g.Yllcorner
	xmax = g.Xllcorner + float64(g.Ncols)*g.CellSize
	ymax = g.Yllcorner + float64(g.Nrows)*g.CellSize
	return
}

// IsNoData reports whether v is the raster's NoData marker.
// NaN always counts as NoData.
func (g *Grid) IsNoData(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	// NoData markers written through float32 pipelines lose precision,
	// so compare with a relative tolerance (numpy.isclose defaults).
	return math.Abs(v-g.NoDataValue) <= 1e-8+1e-5*math.Abs(g.NoDataValue)
}

// CellAt maps a world coordinate to a cell index. ok is false when the
// coordinate falls outside the grid.
func (g *Grid) CellAt(x, y float64) (c, r uint, ok bool) {
	xmin, ymin, xmax, ymax := g.Extent()
	if x < xmin || x >= xmax || y <= ymin || y > ymax {
		return 0, 0, false
	}
	c = uint((x - xmin) / g.CellSize)
	r = uint((ymax - y) / g.CellSize)
	if c >= g.Ncols {
		c = g.Ncols - 1
	}
	if r >= g.Nrows {
		r = g.Nrows - 1
	}
	return c, r, true
}

// ValueAt samples the grid at a world coordinate. ok is false outside the
// grid or on a NoData cell.
func (g *Grid) ValueAt(x, y float64) (v float64, ok bool) {
	c, r, ok := g.CellAt(x, y)
	if !ok {
		return 0, false
	}
	v = g.Data[r][c]
	if g.IsNoData(v) {
		return 0, false
	}
	return v, true
}

// ValidValues returns all non-NoData cell values.
func (g *Grid) ValidValues() []float64 {
	vals := make([]float64, 0, g.Ncols*g.Nrows)
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			v := g.Data[r][c]
			if !g.IsNoData(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
	}
	return vals
}
