package render

import (
	"image"
	"image/color"
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

func TestDefaultRamp(t *testing.T) {
	ramp := DefaultRamp(0, 100)
	require.Len(t, ramp, 5)

	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, ramp.At(-5), "clamps below")
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, ramp.At(0))
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, ramp.At(50))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, ramp.At(100))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, ramp.At(500), "clamps above")

	// Halfway between the 50% and 75% stops.
	mid := ramp.At(62.5)
	assert.Equal(t, uint8(128), mid.R)
	assert.Equal(t, uint8(255), mid.G)
	assert.Equal(t, uint8(0), mid.B)
}

func TestLoadColorTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ramp.txt")
	content := "# elevation ramp\n100 255 0 0\n0 0 0 255\n50 0 255 0 128\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ramp, err := LoadColorTable(path)
	require.NoError(t, err)
	require.Len(t, ramp, 3)
	// Stops come back sorted by value.
	assert.Equal(t, 0.0, ramp[0].Value)
	assert.Equal(t, 100.0, ramp[2].Value)
	assert.Equal(t, uint8(128), ramp[1].Color.A)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("10 1 2\n"), 0644))
	_, err = LoadColorTable(bad)
	assert.Error(t, err)

	short := filepath.Join(dir, "short.txt")
	require.NoError(t, os.WriteFile(short, []byte("10 1 2 3\n"), 0644))
	_, err = LoadColorTable(short)
	assert.Error(t, err, "single stop is not a ramp")
}

func TestColorRelief(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 100},
		{raster.DefaultNoData, 50},
	})
	img := ColorRelief(g, nil)

	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, img.NRGBAAt(1, 1))
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 1).A, "NoData is transparent")
}

func TestGrayscale(t *testing.T) {
	g := gridFrom([][]float64{
		{0, 10},
		{5, raster.DefaultNoData},
	})
	img := Grayscale(g)

	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), img.NRGBAAt(1, 0).R)
	assert.Equal(t, uint8(128), img.NRGBAAt(0, 1).R)
	assert.Equal(t, uint8(0), img.NRGBAAt(1, 1).A)
}

func TestHillshade(t *testing.T) {
	// Flat terrain gets uniform ambient shading of 255*cos(zenith).
	flat := gridFrom([][]float64{
		{5, 5, 5},
		{5, 5, 5},
		{5, 5, 5},
	})
	img := Hillshade(flat, DefaultAzimuth, DefaultAltitude, 1)
	assert.Equal(t, uint8(180), img.NRGBAAt(1, 1).R)

	// A northwest-facing flank is lit, the southeast-facing one is not.
	// Elevation rises toward the southeast corner.
	tilted := gridFrom([][]float64{
		{0, 1, 2},
		{1, 2, 3},
		{2, 3, 4},
	})
	lit := Hillshade(tilted, DefaultAzimuth, DefaultAltitude, 1)
	away := Hillshade(tilted, 135, DefaultAltitude, 1)
	assert.Greater(t, lit.NRGBAAt(1, 1).R, away.NRGBAAt(1, 1).R)

	// NoData neighborhoods are transparent.
	holed := gridFrom([][]float64{
		{5, 5, 5},
		{5, raster.DefaultNoData, 5},
		{5, 5, 5},
	})
	img = Hillshade(holed, DefaultAzimuth, DefaultAltitude, 1)
	assert.Equal(t, uint8(0), img.NRGBAAt(1, 1).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A, "window touches the hole")
}

func TestTerrainRGBRoundTrip(t *testing.T) {
	for _, h := range []float64{-100, 0, 8848.6, 1234.5} {
		got := RGBToHeight(HeightToRGB(h))
		assert.InDelta(t, h, got, 0.1, "height %f", h)
	}

	g := gridFrom([][]float64{{120.5, raster.DefaultNoData}})
	img := TerrainRGB(g)
	assert.InDelta(t, 120.5, RGBToHeight(img.NRGBAAt(0, 0)), 0.1)
	assert.Equal(t, uint8(0), img.NRGBAAt(1, 0).A)
}

func TestWritePreviews(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 300, 150))
	dir := t.TempDir()

	written, err := WritePreviews(img, dir, "slope")
	require.NoError(t, err)
	// 512 and 1024 exceed the source and are skipped.
	require.Len(t, written, 2)
	assert.Equal(t, filepath.Join(dir, "slope_128.png"), written[0])

	f, err := os.Open(written[1])
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)
	assert.Equal(t, 128, cfg.Height, "aspect ratio preserved")
}

func TestBuildTileSet(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 512, 512))
	dir := t.TempDir()

	require.NoError(t, BuildTileSet(1, img, dir))
	for _, p := range []string{"1/0/0.png", "1/0/1.png", "1/1/0.png", "1/1/1.png"} {
		_, err := os.Stat(filepath.Join(dir, p))
		assert.NoError(t, err, p)
	}

	assert.Equal(t, uint8(1), MaxZoom(img))
	assert.Error(t, BuildTileSet(6, image.NewNRGBA(image.Rect(0, 0, 16, 16)), dir))
}

func TestTileRectPartition(t *testing.T) {
	// 301 pixels over 4 tiles: the widened first column must shift the
	// rest so the rects neither overlap nor leave gaps.
	const width, height, tilesPerAxis = 301, 203, 4
	tileWidth := width / tilesPerAxis
	tileHeight := height / tilesPerAxis
	widthRemainder := width % tilesPerAxis
	heightRemainder := height % tilesPerAxis

	for row := 0; row < tilesPerAxis; row++ {
		x := 0
		for col := 0; col < tilesPerAxis; col++ {
			rect := tileRect(col, row, tileWidth, tileHeight, widthRemainder, heightRemainder)
			assert.Equal(t, x, rect.Min.X, "column %d", col)
			x = rect.Max.X
		}
		assert.Equal(t, width, x, "row %d", row)
	}
	for col := 0; col < tilesPerAxis; col++ {
		y := 0
		for row := 0; row < tilesPerAxis; row++ {
			rect := tileRect(col, row, tileWidth, tileHeight, widthRemainder, heightRemainder)
			assert.Equal(t, y, rect.Min.Y, "row %d", row)
			y = rect.Max.Y
		}
		assert.Equal(t, height, y, "column %d", col)
	}
}
