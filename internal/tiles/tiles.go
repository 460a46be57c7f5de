// Package tiles renders the vector layers (zone polygons, contours,
// peaks, centroids) into a gzipped Mapbox vector tile pyramid for map
// preview, plus the tile.json descriptor viewers expect.
package tiles

import (
	"context"
	"fmt"
	"math"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
	"github.com/paulmach/orb/simplify"
	"golang.org/x/sync/semaphore"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

const tileExtent = mvt.DefaultExtent

// LayerSetting limits a layer to a zoom range. Nil bounds mean
// unbounded.
type LayerSetting struct {
	Layer   string  `yaml:"layer" json:"layer"`
	MinZoom *uint16 `yaml:"minzoom" json:"minzoom,omitempty"`
	MaxZoom *uint16 `yaml:"maxzoom" json:"maxzoom,omitempty"`
}

// WorldBox is the square region the pyramid covers: the grid extent
// padded to equal spans so tiles stay unstretched.
type WorldBox struct {
	Xmin, Ymin, Size float64
}

// WorldBoxFor fits a square box around the grid extent.
func WorldBoxFor(g *raster.Grid) WorldBox {
	xmin, ymin, xmax, ymax := g.Extent()
	size := xmax - xmin
	if ymax-ymin > size {
		size = ymax - ymin
	}
	return WorldBox{Xmin: xmin, Ymin: ymin, Size: size}
}

// MaxZoomFor picks the deepest zoom so one tile pixel covers roughly one
// raster cell.
func MaxZoomFor(g *raster.Grid) uint8 {
	cells := g.Ncols
	if g.Nrows > cells {
		cells = g.Nrows
	}
	tilesPerAxis := math.Ceil(float64(cells) / float64(tileExtent))
	if tilesPerAxis < 1 {
		return 0
	}
	return uint8(math.Ceil(math.Log2(tilesPerAxis)))
}

// Build writes a z/x/y.pbf pyramid of the layers for zooms 0..maxZoom.
func Build(outputPath string, collections map[string]*geojson.FeatureCollection,
	maxZoom uint8, box WorldBox, settings []LayerSetting) error {

	for zoom := uint8(0); zoom <= maxZoom; zoom++ {
		zoomDir := path.Join(outputPath, fmt.Sprintf("%d", zoom))
		if err := os.MkdirAll(zoomDir, 0755); err != nil {
			return err
		}
		if err := buildZoomLevel(zoom, zoomDir, collections, box, settings); err != nil {
			return err
		}
	}
	return nil
}

func buildZoomLevel(zoom uint8, zoomDir string, collections map[string]*geojson.FeatureCollection,
	box WorldBox, settings []LayerSetting) error {

	tilesPerAxis := uint32(math.Pow(2, float64(zoom)))
	layers := layersForZoom(collections, settings, uint16(zoom))

	// Project world coordinates onto the zoom level's pixel lattice,
	// flipping Y since tile rows grow southward.
	pixels := float64(uint64(tileExtent) * uint64(tilesPerAxis))
	factor := pixels / box.Size
	projectLayers(layers, func(p orb.Point) orb.Point {
		return orb.Point{
			(p[0] - box.Xmin) * factor,
			(box.Ymin + box.Size - p[1]) * factor,
		}
	})
	for _, l := range layers {
		l.Version = 2
	}

	layers.Simplify(simplify.DouglasPeucker(1.0))
	layers.RemoveEmpty(10.0, 20.0)

	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	var wg sync.WaitGroup
	errs := make(chan error, int(tilesPerAxis)*int(tilesPerAxis))
	for col := uint32(0); col < tilesPerAxis; col++ {
		colDir := path.Join(zoomDir, fmt.Sprintf("%d", col))
		if err := os.MkdirAll(colDir, 0755); err != nil {
			return err
		}
		for row := uint32(0); row < tilesPerAxis; row++ {
			wg.Add(1)
			go func(col, row uint32) {
				defer wg.Done()
				if err := sem.Acquire(context.Background(), 1); err != nil {
					errs <- err
					return
				}
				defer sem.Release(1)

				data, err := encodeTile(col, row, layers)
				if err != nil {
					errs <- fmt.Errorf("tile %d/%d/%d: %w", zoom, col, row, err)
					return
				}
				tilePath := path.Join(zoomDir, fmt.Sprintf("%d", col), fmt.Sprintf("%d.pbf", row))
				if err := os.WriteFile(tilePath, data, 0644); err != nil {
					errs <- err
				}
			}(col, row)
		}
	}
	wg.Wait()
	close(errs)
	return <-errs
}

// layersForZoom clones the collections allowed at a zoom level into
// mvt layers.
func layersForZoom(collections map[string]*geojson.FeatureCollection,
	settings []LayerSetting, zoom uint16) mvt.Layers {

	selected := make(map[string]*geojson.FeatureCollection)
	for name, fc := range collections {
		setting := LayerSetting{Layer: name}
		for _, s := range settings {
			if s.Layer == name {
				setting = s
				break
			}
		}
		if setting.MinZoom != nil && *setting.MinZoom > zoom {
			continue
		}
		if setting.MaxZoom != nil && *setting.MaxZoom < zoom {
			continue
		}
		selected[name] = cloneCollection(fc)
	}
	return mvt.NewLayers(selected)
}

func encodeTile(x, y uint32, layers mvt.Layers) ([]byte, error) {
	clone := cloneLayers(layers)

	xOffset := float64(x * tileExtent)
	yOffset := float64(y * tileExtent)
	projectLayers(clone, func(p orb.Point) orb.Point {
		return orb.Point{p[0] - xOffset, p[1] - yOffset}
	})

	clone.Clip(mvt.MapboxGLDefaultExtentBound)
	clone.RemoveEmpty(0, 0)

	return mvt.MarshalGzipped(clone)
}

func projectLayers(layers mvt.Layers, projection orb.Projection) {
	for _, layer := range layers {
		for _, feature := range layer.Features {
			feature.Geometry = project.Geometry(feature.Geometry, projection)
		}
	}
}
