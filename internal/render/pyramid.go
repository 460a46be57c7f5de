package render

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/nfnt/resize"
	"golang.org/x/sync/semaphore"
)

// TileSize is the pixel edge of one pyramid tile.
const TileSize = 256

var tileSem = semaphore.NewWeighted(int64(runtime.NumCPU()))

// BuildTileSet slices the rendered image into a z/x/y.png tile set for
// one zoom level under outputDirectory. Tiles are resized to TileSize
// and written concurrently.
func BuildTileSet(zoom uint8, img image.Image, outputDirectory string) error {
	outputDirectory = path.Join(outputDirectory, fmt.Sprintf("%d", zoom))
	tilesPerAxis := int(math.Pow(2, float64(zoom)))

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	tileWidth := width / tilesPerAxis
	tileHeight := height / tilesPerAxis
	if tileWidth == 0 || tileHeight == 0 {
		return fmt.Errorf("image %dx%d too small for zoom %d", width, height, zoom)
	}

	for col := 0; col < tilesPerAxis; col++ {
		if err := os.MkdirAll(path.Join(outputDirectory, fmt.Sprintf("%d", col)), 0755); err != nil {
			return err
		}
	}
	widthRemainder := width % tilesPerAxis
	heightRemainder := height % tilesPerAxis

	var wg sync.WaitGroup
	errs := make(chan error, tilesPerAxis*tilesPerAxis)
	for col := 0; col < tilesPerAxis; col++ {
		for row := 0; row < tilesPerAxis; row++ {
			wg.Add(1)
			go func(col, row int) {
				defer wg.Done()
				tilePath := path.Join(outputDirectory, fmt.Sprintf("%d", col), fmt.Sprintf("%d.png", row))
				rect := tileRect(col, row, tileWidth, tileHeight, widthRemainder, heightRemainder)
				if err := writeTile(img, rect, tilePath); err != nil {
					errs <- err
				}
			}(col, row)
		}
	}
	wg.Wait()
	close(errs)
	return <-errs
}

// tileRect is the source region of one tile. Leftover pixels are spread
// over the first columns and rows, with later tiles shifted past the
// widened ones so the rects partition the image exactly.
func tileRect(col, row, tileWidth, tileHeight, widthRemainder, heightRemainder int) image.Rectangle {
	x := tileWidth*col + min(col, widthRemainder)
	y := tileHeight*row + min(row, heightRemainder)
	w := tileWidth
	h := tileHeight
	if col < widthRemainder {
		w++
	}
	if row < heightRemainder {
		h++
	}
	return image.Rect(x, y, x+w, y+h)
}

// MaxZoom returns the deepest zoom level at which a tile still covers at
// least TileSize source pixels per axis.
func MaxZoom(img image.Image) uint8 {
	shortEdge := img.Bounds().Dx()
	if img.Bounds().Dy() < shortEdge {
		shortEdge = img.Bounds().Dy()
	}
	zoom := uint8(0)
	for (shortEdge >> (zoom + 1)) >= TileSize {
		zoom++
	}
	return zoom
}

// BuildPyramid writes tile sets for every zoom level from 0 to
// MaxZoom(img).
func BuildPyramid(img image.Image, outputDirectory string) (maxZoom uint8, err error) {
	maxZoom = MaxZoom(img)
	for zoom := uint8(0); zoom <= maxZoom; zoom++ {
		if err := BuildTileSet(zoom, img, outputDirectory); err != nil {
			return maxZoom, err
		}
	}
	return maxZoom, nil
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

func writeTile(img image.Image, rect image.Rectangle, tilePath string) error {
	if err := tileSem.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer tileSem.Release(1)

	src, ok := img.(subImager)
	if !ok {
		return fmt.Errorf("image type %T does not support tiling", img)
	}
	tile := resize.Resize(TileSize, TileSize, src.SubImage(rect), resize.MitchellNetravali)
	return SavePNG(tilePath, tile)
}
