package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

func uniformGrid(size uint, value float64) *raster.Grid {
	g := raster.New(size, size, 0, 0, 1)
	for r := range g.Data {
		for c := range g.Data[r] {
			g.Data[r][c] = value
		}
	}
	return g
}

func TestValidExtentFullGrid(t *testing.T) {
	g := uniformGrid(10, 5)
	xmin, ymin, xmax, ymax := ValidExtent(g)
	// Buffered sample hull clamps back to the raster bounds.
	assert.InDelta(t, 0.0, xmin, 1e-9)
	assert.InDelta(t, 0.0, ymin, 1e-9)
	assert.InDelta(t, 10.0, xmax, 1e-9)
	assert.InDelta(t, 10.0, ymax, 1e-9)
}

func TestValidExtentHalfNoData(t *testing.T) {
	g := uniformGrid(10, 5)
	for r := range g.Data {
		for c := 5; c < 10; c++ {
			g.Data[r][c] = g.NoDataValue
		}
	}
	xmin, _, xmax, _ := ValidExtent(g)
	assert.Less(t, xmin, 0.05)
	assert.Greater(t, xmax, 4.5)
	assert.Less(t, xmax, 5.01)
}

func TestValidExtentFallback(t *testing.T) {
	g := raster.New(4, 4, 0, 0, 1)
	xmin, ymin, xmax, ymax := ValidExtent(g)
	assert.Equal(t, [4]float64{0, 0, 4, 4}, [4]float64{xmin, ymin, xmax, ymax})
}

func TestGeneratePath(t *testing.T) {
	g := uniformGrid(10, 5)

	lr, err := GeneratePath(g, LeftToRight, 5)
	require.NoError(t, err)
	require.Len(t, lr, 5)
	assert.Equal(t, 0, lr[0].Index)
	assert.Equal(t, 4, lr[4].Index)
	assert.InDelta(t, 0.0, lr[0].X, 1e-9)
	assert.InDelta(t, 10.0, lr[4].X, 1e-9)
	assert.InDelta(t, 5.0, lr[2].Y, 1e-9)

	tb, err := GeneratePath(g, TopToBottom, 3)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, tb[1].X, 1e-9)
	assert.Greater(t, tb[0].Y, tb[2].Y, "top to bottom runs north to south")

	diag, err := GeneratePath(g, Diagonal, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, diag[0].X, 1e-9)
	assert.InDelta(t, 10.0, diag[0].Y, 1e-9)
	assert.InDelta(t, 10.0, diag[2].X, 1e-9)
	assert.InDelta(t, 0.0, diag[2].Y, 1e-9)

	_, err = GeneratePath(g, LeftToRight, 1)
	assert.Error(t, err)
	_, err = GeneratePath(g, Direction("spiral"), 5)
	assert.Error(t, err)
}

func TestExtractDropsInvalid(t *testing.T) {
	g := uniformGrid(4, 7)
	g.Data[2][2] = g.NoDataValue

	pts := []Point{
		{0, 0.5, 3.5}, // valid cell (0,0)
		{1, 2.5, 1.5}, // the NoData cell
		{2, -5, -5},   // off the grid
		{3, 3.5, 0.5}, // valid cell (3,3)
	}
	samples, frac := Extract(g, pts)
	require.Len(t, samples, 2)
	assert.Equal(t, 0, samples[0].Index)
	assert.Equal(t, 3, samples[1].Index)
	assert.Equal(t, 7.0, samples[0].Value)
	assert.InDelta(t, 0.5, frac, 1e-9)
	assert.Greater(t, frac, LowCoverageThreshold)
}

func TestMovingAverage(t *testing.T) {
	samples := []Sample{
		{Value: 1}, {Value: 2}, {Value: 3}, {Value: 4}, {Value: 5},
	}
	avg := MovingAverage(samples, 3)
	require.Len(t, avg, 5)
	assert.Nil(t, avg[0])
	assert.Nil(t, avg[4])
	require.NotNil(t, avg[2])
	assert.InDelta(t, 3.0, *avg[2], 1e-9)
	assert.InDelta(t, 2.0, *avg[1], 1e-9)

	// Window larger than the series leaves everything blank.
	for _, v := range MovingAverage(samples, 9) {
		assert.Nil(t, v)
	}
}

func TestCombine(t *testing.T) {
	series := map[string][]Sample{
		"slope": {{Index: 0, X: 1, Y: 2, Value: 10}, {Index: 1, X: 3, Y: 2, Value: 20}, {Index: 2, X: 5, Y: 2, Value: 30}},
		"tpi":   {{Index: 0, X: 1, Y: 2, Value: -1}, {Index: 2, X: 5, Y: 2, Value: -3}},
	}
	rows, err := Combine([]string{"slope", "tpi"}, series)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 10.0, *rows[0].Values[0])
	assert.Equal(t, -1.0, *rows[0].Values[1])
	assert.Nil(t, rows[1].Values[1], "tpi dropped point 1")
	assert.Equal(t, -3.0, *rows[2].Values[1])

	_, err = Combine(nil, series)
	assert.Error(t, err)
	_, err = Combine([]string{"slope", "missing"}, series)
	assert.Error(t, err)
}

func TestWriteCombinedCSV(t *testing.T) {
	v1, v2 := 1.5, 2.5
	rows := []CombinedRow{
		{Index: 0, X: 1, Y: 2, Values: []*float64{&v1, nil}},
		{Index: 2, X: 3, Y: 2, Values: []*float64{&v2, &v2}},
	}
	path := filepath.Join(t.TempDir(), "combined.csv")
	require.NoError(t, WriteCombinedCSV(path, []string{"slope", "tpi"}, rows))

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "Index,X,Y,slope,tpi", lines[0])
	assert.Equal(t, "0,1,2,1.5,", lines[1])
	assert.Equal(t, "2,3,2,2.5,2.5", lines[2])
}

func TestReadCombinedCSVRoundTrip(t *testing.T) {
	v1, v2 := 1.5, 2.5
	rows := []CombinedRow{
		{Index: 0, X: 1, Y: 2, Values: []*float64{&v1, nil}},
		{Index: 2, X: 3, Y: 2, Values: []*float64{&v2, &v2}},
	}
	path := filepath.Join(t.TempDir(), "combined.csv")
	require.NoError(t, WriteCombinedCSV(path, []string{"slope", "tpi"}, rows))

	names, got, err := ReadCombinedCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"slope", "tpi"}, names)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	require.NotNil(t, got[0].Values[0])
	assert.Equal(t, 1.5, *got[0].Values[0])
	assert.Nil(t, got[0].Values[1])
	require.NotNil(t, got[1].Values[1])
	assert.Equal(t, 2.5, *got[1].Values[1])
}

func TestReadCombinedCSVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Index,X,Y,slope\nnope,1,2,3\n"), 0644))
	_, _, err := ReadCombinedCSV(path)
	assert.Error(t, err)
}

func TestWriteSeriesCSV(t *testing.T) {
	samples := []Sample{{Index: 0, X: 1, Y: 2, Value: 3}, {Index: 4, X: 5, Y: 2, Value: 7}}
	dir := t.TempDir()

	plain := filepath.Join(dir, "series.csv")
	require.NoError(t, WriteSeriesCSV(plain, samples))
	lines := readLines(t, plain)
	assert.Equal(t, "Index,X,Y,Value", lines[0])
	assert.Equal(t, "4,5,2,7", lines[2])

	avg := MovingAverage(samples, 1)
	withAvg := filepath.Join(dir, "series_avg.csv")
	require.NoError(t, WriteSeriesWithAverage(withAvg, samples, avg))
	lines = readLines(t, withAvg)
	assert.Equal(t, "Index,X,Y,Value,MovingAvg", lines[0])
	assert.Equal(t, "0,1,2,3,3", lines[1])
}

func TestWritePathPoints(t *testing.T) {
	pts := []Point{{0, 1.5, 2.5}, {1, 3.5, 2.5}}
	path := filepath.Join(t.TempDir(), "path_points.csv")
	require.NoError(t, WritePathPoints(path, pts))
	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "Index,X,Y", lines[0])
	assert.Equal(t, "1,3.5,2.5", lines[2])
}

func TestWriteFullGridCSV(t *testing.T) {
	v1, v2 := 1.0, 2.0
	rows := []CombinedRow{
		{Index: 0, X: 0.5, Y: 1.5, Values: []*float64{&v1}},
		{Index: 1, X: 1.5, Y: 0.5, Values: []*float64{&v2}},
	}
	path := filepath.Join(t.TempDir(), "full_grid.csv")
	require.NoError(t, WriteFullGridCSV(path, []string{"slope"}, rows, 2, 2, 0, 0, 2, 2))

	lines := readLines(t, path)
	require.Len(t, lines, 5)
	assert.Equal(t, "pixel_x,pixel_y,world_x,world_y,slope", lines[0])
	// Column-major: (0,0), (0,1), (1,0), (1,1).
	assert.True(t, strings.HasPrefix(lines[1], "0,0,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "0,1,"), lines[2])
	assert.True(t, strings.HasSuffix(lines[1], ",1"), "pixel 0,0 holds the first point")
	assert.True(t, strings.HasSuffix(lines[2], ","), "pixel 0,1 is empty")
	assert.True(t, strings.HasSuffix(lines[4], ",2"), "pixel 1,1 holds the second point")
}

func TestWriteFullGridCSVSnapsToNearestData(t *testing.T) {
	// One data point must fill every pixel: each pixel snaps to the
	// closest data X and Y independently, so a scan line covers the
	// whole image instead of the pixels it passes through.
	v := 7.0
	rows := []CombinedRow{{Index: 0, X: 0.5, Y: 0.5, Values: []*float64{&v}}}
	path := filepath.Join(t.TempDir(), "full_grid.csv")
	require.NoError(t, WriteFullGridCSV(path, []string{"slope"}, rows, 4, 1, 0, 0, 4, 1))

	lines := readLines(t, path)
	require.Len(t, lines, 5)
	for _, line := range lines[1:] {
		assert.True(t, strings.HasSuffix(line, ",7"), line)
	}
}

func TestWriteColumnAggregatedCSV(t *testing.T) {
	v1, v3 := 1.0, 3.0
	rows := []CombinedRow{
		{X: 0.4, Values: []*float64{&v1}},
		{X: 0.6, Values: []*float64{&v3}},
	}
	path := filepath.Join(t.TempDir(), "columns.csv")
	require.NoError(t, WriteColumnAggregatedCSV(path, []string{"slope"}, rows, 2, 0, 2))

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "pixel_x,world_x,slope", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",2"), "median of 1 and 3")
	assert.True(t, strings.HasSuffix(lines[2], ","), "empty column")
}

func TestSortColumnwise(t *testing.T) {
	rows := []CombinedRow{
		{Index: 0, X: 2, Y: 1},
		{Index: 1, X: 1, Y: 5},
		{Index: 2, X: 1, Y: 2},
	}
	SortColumnwise(rows)
	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, 1, rows[1].Index)
	assert.Equal(t, 0, rows[2].Index)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
