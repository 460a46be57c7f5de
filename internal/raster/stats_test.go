package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridFrom(t *testing.T, data [][]float64) *Grid {
	t.Helper()
	g := New(uint(len(data[0])), uint(len(data)), 0, 0, 1)
	for r := range data {
		copy(g.Data[r], data[r])
	}
	return g
}

func TestComputeStats(t *testing.T) {
	g := gridFrom(t, [][]float64{
		{1, 2, 3},
		{4, DefaultNoData, 6},
	})

	stats := g.ComputeStats()
	assert.Equal(t, 5, stats.ValidCells)
	assert.Equal(t, 1, stats.NoDataCells)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 6.0, stats.Max)
	assert.InDelta(t, 3.2, stats.Mean, 1e-9)
	assert.InDelta(t, 1.7204650534, stats.StdDev, 1e-6)
	assert.Equal(t, uint(3), stats.Width)
	assert.Equal(t, 3.0, stats.Extent.Xmax)
}

func TestComputeStatsAllNoData(t *testing.T) {
	g := New(2, 2, 0, 0, 1)
	stats := g.ComputeStats()
	assert.Equal(t, 0, stats.ValidCells)
	assert.Equal(t, 4, stats.NoDataCells)
	assert.Equal(t, 0.0, stats.Mean)
}

func TestPercentile(t *testing.T) {
	g := gridFrom(t, [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, DefaultNoData},
	})

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 2.5},
		{50, 4},
		{75, 5.5},
		{100, 7},
	}
	for _, tt := range tests {
		got, ok := g.Percentile(tt.p)
		require.True(t, ok)
		assert.InDelta(t, tt.want, got, 1e-9, "p=%v", tt.p)
	}

	empty := New(2, 2, 0, 0, 1)
	_, ok := empty.Percentile(50)
	assert.False(t, ok)
}

func TestClean(t *testing.T) {
	g := gridFrom(t, [][]float64{
		{1, math.NaN(), math.Inf(1)},
		{DefaultNoData, 5, 6},
	})

	clean := g.Clean(0)
	assert.Equal(t, 1.0, clean.Z(0, 0))
	assert.Equal(t, 0.0, clean.Z(1, 0))
	assert.Equal(t, 0.0, clean.Z(2, 0))
	assert.True(t, clean.IsNoData(clean.Z(0, 1)), "NoData pattern must survive")

	csv := g.CleanForCSV(0)
	for r := uint(0); r < csv.Nrows; r++ {
		for c := uint(0); c < csv.Ncols; c++ {
			assert.False(t, csv.IsNoData(csv.Z(c, r)), "csv-ready grid must be gap free")
		}
	}
	assert.Equal(t, 0.0, csv.Z(0, 1))
}

func TestResample(t *testing.T) {
	g := gridFrom(t, [][]float64{
		{1, 2},
		{3, 4},
	})

	out := g.Resample(0.5)
	assert.Equal(t, uint(4), out.Ncols)
	assert.Equal(t, uint(4), out.Nrows)
	// top-left quadrant keeps the top-left source value
	assert.Equal(t, 1.0, out.Z(0, 0))
	assert.Equal(t, 1.0, out.Z(1, 1))
	assert.Equal(t, 4.0, out.Z(3, 3))

	same := g.Resample(1)
	assert.Equal(t, g.Data, same.Data)
}
