package raster

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

var (
	netcdfLatNames  = []string{"y", "lat", "latitude", "northing"}
	netcdfLonNames  = []string{"x", "lon", "longitude", "easting"}
	netcdfElevNames = []string{"elevation", "z", "Band1", "dem", "height"}
)

// ReadNetCDF loads an elevation grid from a NetCDF file. The file must
// carry one-dimensional coordinate variables and a 2-D elevation variable;
// common names are probed when varName is empty. Coordinate spacing must be
// regular since the grid model has a single cell size.
func ReadNetCDF(path, varName string) (*Grid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer nc.Close()

	ys, err := coordValues(nc, netcdfLatNames)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	xs, err := coordValues(nc, netcdfLonNames)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	names := netcdfElevNames
	if varName != "" {
		names = []string{varName}
	}
	vg, err := firstVar(nc, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	vals, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	data, err := toRows(vals, len(ys), len(xs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cellSize := math.Abs(xs[1] - xs[0])
	if len(ys) > 1 {
		dy := math.Abs(ys[1] - ys[0])
		if math.Abs(dy-cellSize)/cellSize > 0.01 {
			return nil, fmt.Errorf("%s: non-square cells (%g x %g)", path, cellSize, dy)
		}
	}

	// coordinate vars address cell centers
	xmin := math.Min(xs[0], xs[len(xs)-1]) - cellSize/2
	ymin := math.Min(ys[0], ys[len(ys)-1]) - cellSize/2

	grid := &Grid{
		Ncols:       uint(len(xs)),
		Nrows:       uint(len(ys)),
		Xllcorner:   xmin,
		Yllcorner:   ymin,
		CellSize:    cellSize,
		NoDataValue: DefaultNoData,
		Data:        make([][]float64, len(ys)),
	}

	// grid rows run north to south; flip when the y coordinate ascends
	ascending := len(ys) > 1 && ys[1] > ys[0]
	for r := 0; r < len(ys); r++ {
		src := r
		if ascending {
			src = len(ys) - 1 - r
		}
		grid.Data[r] = data[src]
	}

	return grid, nil
}

func coordValues(nc api.Group, names []string) ([]float64, error) {
	vg, err := firstVar(nc, names)
	if err != nil {
		return nil, err
	}
	vals, err := vg.Values()
	if err != nil {
		return nil, err
	}
	out := toFloat64s(vals)
	if len(out) < 2 {
		return nil, fmt.Errorf("coordinate variable has %d values, need at least 2", len(out))
	}
	return out, nil
}

func firstVar(nc api.Group, names []string) (api.VarGetter, error) {
	for _, name := range names {
		vg, err := nc.GetVarGetter(name)
		if err == nil {
			return vg, nil
		}
	}
	return nil, fmt.Errorf("none of the variables %v found", names)
}

func toFloat64s(vals any) []float64 {
	switch v := vals.(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out
	case []int32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out
	case []int16:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out
	}
	return nil
}

func toRows(vals any, nrows, ncols int) ([][]float64, error) {
	var rows [][]float64
	switch v := vals.(type) {
	case [][]float64:
		rows = v
	case [][]float32:
		rows = make([][]float64, len(v))
		for r, src := range v {
			row := make([]float64, len(src))
			for c, f := range src {
				row[c] = float64(f)
			}
			rows[r] = row
		}
	case [][]int16:
		rows = make([][]float64, len(v))
		for r, src := range v {
			row := make([]float64, len(src))
			for c, f := range src {
				row[c] = float64(f)
			}
			rows[r] = row
		}
	case [][]int32:
		rows = make([][]float64, len(v))
		for r, src := range v {
			row := make([]float64, len(src))
			for c, f := range src {
				row[c] = float64(f)
			}
			rows[r] = row
		}
	default:
		return nil, fmt.Errorf("unsupported elevation variable type %T", vals)
	}
	if len(rows) != nrows || (len(rows) > 0 && len(rows[0]) != ncols) {
		return nil, fmt.Errorf("elevation variable shape mismatch: got %dx%d, dims say %dx%d", len(rows), len(rows[0]), nrows, ncols)
	}
	return rows, nil
}
