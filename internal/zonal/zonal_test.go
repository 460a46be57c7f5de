package zonal

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

func gridFrom(rows [][]float64) *raster.Grid {
	g := raster.New(uint(len(rows[0])), uint(len(rows)), 0, 0, 1)
	for r := range rows {
		copy(g.Data[r], rows[r])
	}
	return g
}

func TestCompute(t *testing.T) {
	mask := gridFrom([][]float64{
		{1, 1, 0},
		{1, 1, 0},
	})
	values := gridFrom([][]float64{
		{2, 4, 100},
		{6, 8, 100},
	})

	s, err := Compute("ridge", "slope", mask, values)
	require.NoError(t, err)

	assert.Equal(t, uint(4), s.Count)
	assert.InDelta(t, 20.0, s.Sum, 1e-9)
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 5.0, s.Median, 1e-9)
	assert.InDelta(t, math.Sqrt(5), s.StdDev, 1e-9)
	assert.InDelta(t, 2.0, s.Min, 1e-9)
	assert.InDelta(t, 8.0, s.Max, 1e-9)
	assert.InDelta(t, 6.0, s.Range, 1e-9)
}

func TestComputeSkipsInvalid(t *testing.T) {
	mask := gridFrom([][]float64{{1, 1, 1}})
	values := gridFrom([][]float64{{3, raster.DefaultNoData, math.NaN()}})

	s, err := Compute("z", "f", mask, values)
	require.NoError(t, err)
	assert.Equal(t, uint(1), s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
}

func TestComputeEmptyZone(t *testing.T) {
	mask := gridFrom([][]float64{{0, 0}})
	values := gridFrom([][]float64{{1, 2}})

	s, err := Compute("z", "f", mask, values)
	require.NoError(t, err)
	assert.Zero(t, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Min))
}

func TestComputeShapeMismatch(t *testing.T) {
	mask := gridFrom([][]float64{{1, 1}})
	values := gridFrom([][]float64{{1, 2, 3}})
	_, err := Compute("z", "f", mask, values)
	assert.Error(t, err)
}

func TestComputeAllOrder(t *testing.T) {
	mask := gridFrom([][]float64{{1}})
	a := gridFrom([][]float64{{1}})
	b := gridFrom([][]float64{{2}})

	sums, err := ComputeAll(
		[]string{"ridge", "valley"},
		map[string]*raster.Grid{"ridge": mask, "valley": mask},
		[]string{"slope", "tpi"},
		map[string]*raster.Grid{"slope": a, "tpi": b},
	)
	require.NoError(t, err)
	require.Len(t, sums, 4)
	assert.Equal(t, "ridge", sums[0].Zone)
	assert.Equal(t, "slope", sums[0].Feature)
	assert.Equal(t, "ridge", sums[1].Zone)
	assert.Equal(t, "tpi", sums[1].Feature)
	assert.Equal(t, "valley", sums[2].Zone)

	_, err = ComputeAll([]string{"nope"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	mask := gridFrom([][]float64{{1, 1}})
	values := gridFrom([][]float64{{2, 4}})
	s, err := Compute("ridge", "slope", mask, values)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ridge_slope.csv")
	require.NoError(t, WriteCSV(path, []Summary{s}, []string{"mean", "min", "max"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "zone,feature,mean,min,max", lines[0])
	assert.Equal(t, "ridge,slope,3,2,4", lines[1])
}

func TestFilterZone(t *testing.T) {
	sums := []Summary{
		{Zone: "a", Feature: "x"},
		{Zone: "b", Feature: "x"},
		{Zone: "a", Feature: "y"},
	}
	got := FilterZone(sums, "a")
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].Feature)
	assert.Equal(t, "y", got[1].Feature)
}

func TestValidateStats(t *testing.T) {
	assert.NoError(t, ValidateStats([]string{"mean", "median", "range"}))
	assert.Error(t, ValidateStats([]string{"mean", "variance"}))
}
