package mask

import (
	"encoding/json"
	"os"
	"path/filepath"
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

func TestThresholdMask(t *testing.T) {
	g := gridFrom([][]float64{
		{1, 2, 3},
		{4, raster.DefaultNoData, 6},
	})
	thr := 3.0
	res, err := Threshold("steep", g, Condition{
		Feature: "slope", Compare: Greater, Threshold: &thr,
	})
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0, 0, 0}, {1, 0, 1}}, res.Grid.Data)
	assert.Equal(t, uint(2), res.PixelCount)
	assert.Equal(t, uint(5), res.TotalValid)
	assert.InDelta(t, 40.0, res.AreaPct, 1e-9)
	assert.Equal(t, thr, res.Thresholds[0].Value)
}

func TestCombinedPercentileMask(t *testing.T) {
	// tpi {1..8}: p75 = 6.25. curvature {8..1}: p25 = 2.75.
	tpi := gridFrom([][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}})
	curv := gridFrom([][]float64{{8, 7, 6, 5}, {4, 3, 2, 1}})

	res, err := Build(Definition{
		Name: "ridge",
		Conditions: []Condition{
			{Feature: "tpi", Compare: Greater, Percentile: 75},
			{Feature: "curvature", Compare: Less, Percentile: 25},
		},
	}, map[string]*raster.Grid{"tpi": tpi, "curvature": curv})
	require.NoError(t, err)

	// Only tpi 7 and 8 pass p75, and their curvature 2 and 1 pass p25.
	assert.Equal(t, [][]float64{{0, 0, 0, 0}, {0, 0, 1, 1}}, res.Grid.Data)
	assert.InDelta(t, 6.25, res.Thresholds[0].Value, 1e-9)
	assert.InDelta(t, 2.75, res.Thresholds[1].Value, 1e-9)
}

func TestMaskNoDataIntersection(t *testing.T) {
	nd := raster.DefaultNoData
	a := gridFrom([][]float64{{5, nd, 5}})
	b := gridFrom([][]float64{{5, 5, nd}})
	zero := 0.0

	res, err := Build(Definition{
		Name: "both",
		Conditions: []Condition{
			{Feature: "a", Compare: Greater, Threshold: &zero},
			{Feature: "b", Compare: Greater, Threshold: &zero},
		},
	}, map[string]*raster.Grid{"a": a, "b": b})
	require.NoError(t, err)

	// NoData in either input forces 0 and drops the cell from the valid
	// total.
	assert.Equal(t, [][]float64{{1, 0, 0}}, res.Grid.Data)
	assert.Equal(t, uint(1), res.TotalValid)
}

func TestBuildErrors(t *testing.T) {
	g := gridFrom([][]float64{{1, 2}})

	_, err := Build(Definition{Name: "empty"}, nil)
	assert.Error(t, err)

	_, err = Build(Definition{
		Name:       "missing",
		Conditions: []Condition{{Feature: "nope", Compare: Greater}},
	}, map[string]*raster.Grid{"slope": g})
	assert.Error(t, err)

	other := gridFrom([][]float64{{1, 2, 3}})
	_, err = Build(Definition{
		Name: "shape",
		Conditions: []Condition{
			{Feature: "a", Compare: Greater, Percentile: 50},
			{Feature: "b", Compare: Greater, Percentile: 50},
		},
	}, map[string]*raster.Grid{"a": g, "b": other})
	assert.Error(t, err)
}

func TestDefaultDefinitions(t *testing.T) {
	defs := DefaultDefinitions()
	require.Len(t, defs, 3)
	names := []string{defs[0].Name, defs[1].Name, defs[2].Name}
	assert.Equal(t, []string{"ridge", "valley", "erosion"}, names)
	for _, d := range defs {
		assert.Len(t, d.Conditions, 2)
	}
}

func TestWriteMetadata(t *testing.T) {
	g := gridFrom([][]float64{{1, 2}})
	thr := 1.0
	res, err := Threshold("t", g, Condition{Feature: "f", Compare: Greater, Threshold: &thr})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mask_metadata.json")
	entries := []Entry{{Result: res, Path: "masks/t.asc"}}
	require.NoError(t, WriteMetadata(path, "run-1", entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "run-1", meta.RunID)
	require.Len(t, meta.Masks, 1)
	assert.Equal(t, "t", meta.Masks[0].Name)
	assert.Equal(t, "masks/t.asc", meta.Masks[0].Path)
}
