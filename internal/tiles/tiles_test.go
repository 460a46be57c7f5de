package tiles

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

func squareFC(x0, y0, x1, y1 float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Polygon{{
		{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0},
	}})
	f.Properties["zone"] = "ridge"
	fc.Append(f)
	return fc
}

func TestWorldBoxFor(t *testing.T) {
	g := raster.New(100, 50, 10, 20, 2)
	box := WorldBoxFor(g)
	assert.Equal(t, 10.0, box.Xmin)
	assert.Equal(t, 20.0, box.Ymin)
	assert.Equal(t, 200.0, box.Size, "square box uses the longer span")
}

func TestMaxZoomFor(t *testing.T) {
	assert.Equal(t, uint8(0), MaxZoomFor(raster.New(256, 256, 0, 0, 1)))
	assert.Equal(t, uint8(1), MaxZoomFor(raster.New(512, 512, 0, 0, 1)))
	assert.Equal(t, uint8(2), MaxZoomFor(raster.New(1000, 1000, 0, 0, 1)))
}

func TestLayersForZoom(t *testing.T) {
	collections := map[string]*geojson.FeatureCollection{
		"ridge":    squareFC(0, 0, 10, 10),
		"contours": squareFC(0, 0, 10, 10),
	}
	min := uint16(3)
	settings := []LayerSetting{{Layer: "contours", MinZoom: &min}}

	low := layersForZoom(collections, settings, 1)
	require.Len(t, low, 1)
	assert.Equal(t, "ridge", low[0].Name)

	high := layersForZoom(collections, settings, 3)
	assert.Len(t, high, 2)
}

func TestLayersForZoomClones(t *testing.T) {
	fc := squareFC(0, 0, 10, 10)
	layers := layersForZoom(map[string]*geojson.FeatureCollection{"ridge": fc}, nil, 0)
	require.Len(t, layers, 1)

	// Mutating the layer copy must not touch the source collection.
	poly := layers[0].Features[0].Geometry.(orb.Polygon)
	poly[0][0][0] = 999
	orig := fc.Features[0].Geometry.(orb.Polygon)
	assert.Equal(t, 0.0, orig[0][0][0])
}

func TestBuildWritesPyramid(t *testing.T) {
	g := raster.New(64, 64, 0, 0, 1)
	box := WorldBoxFor(g)
	collections := map[string]*geojson.FeatureCollection{
		"ridge": squareFC(8, 8, 56, 56),
	}

	dir := t.TempDir()
	require.NoError(t, Build(dir, collections, 1, box, nil))

	for _, p := range []string{"0/0/0.pbf", "1/0/0.pbf", "1/1/1.pbf"} {
		info, err := os.Stat(filepath.Join(dir, p))
		require.NoError(t, err, p)
		assert.Greater(t, info.Size(), int64(0), p)
	}
}

func TestWriteTileJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteTileJSON(dir, "test-dem", 4, []string{"ridge", "contours", "custom"}))

	data, err := os.ReadFile(filepath.Join(dir, "tile.json"))
	require.NoError(t, err)
	var tj TileJSON
	require.NoError(t, json.Unmarshal(data, &tj))

	assert.Equal(t, "2.2.0", tj.TileJSON)
	assert.Equal(t, uint8(4), tj.Maxzoom)
	assert.Equal(t, "xyz", tj.Scheme)
	require.Len(t, tj.VectorLayers, 3)
	assert.Equal(t, "ridge", tj.VectorLayers[0].ID)
	assert.Contains(t, tj.VectorLayers[0].Fields, "zone_id")
	assert.Empty(t, tj.VectorLayers[2].Fields, "unknown layers get no schema")
}
