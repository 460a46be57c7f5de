// Package scan extracts time-series from rasters by sampling along a
// scan path, the step that turns terrain into sonification input. Grids
// often carry large NoData margins, so paths are laid out across the
// valid-data extent rather than the nominal one.
package scan

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Direction selects how a path crosses the raster.
type Direction string

const (
	LeftToRight Direction = "left_to_right"
	TopToBottom Direction = "top_to_bottom"
	Diagonal    Direction = "diagonal"
)

// Directions lists the supported path directions.
var Directions = []Direction{LeftToRight, TopToBottom, Diagonal}

// Point is one path position in world coordinates.
type Point struct {
	Index int
	X, Y  float64
}

// extentSamples is the sampling resolution used to find the valid-data
// extent.
const extentSamples = 20

// extentBuffer grows the discovered extent by 5% per axis so the path
// does not hug the data boundary.
const extentBuffer = 0.05

// ValidExtent estimates the bounding box of the grid's valid data by
// probing a coarse sample lattice, then buffering the hit area. Falls
// back to the full extent when no probe hits valid data.
func ValidExtent(g *raster.Grid) (xmin, ymin, xmax, ymax float64) {
	fullXmin, fullYmin, fullXmax, fullYmax := g.Extent()

	found := false
	for i := 0; i < extentSamples; i++ {
		for j := 0; j < extentSamples; j++ {
			x := fullXmin + (float64(i)+0.5)*(fullXmax-fullXmin)/extentSamples
			y := fullYmin + (float64(j)+0.5)*(fullYmax-fullYmin)/extentSamples
			if _, ok := g.ValueAt(x, y); !ok {
				continue
			}
			if !found {
				xmin, ymin, xmax, ymax = x, y, x, y
				found = true
				continue
			}
			if x < xmin {
				xmin = x
			}
			if x > xmax {
				xmax = x
			}
			if y < ymin {
				ymin = y
			}
			if y > ymax {
				ymax = y
			}
		}
	}
	if !found {
		return fullXmin, fullYmin, fullXmax, fullYmax
	}

	bx := (xmax - xmin) * extentBuffer
	by := (ymax - ymin) * extentBuffer
	xmin, xmax = xmin-bx, xmax+bx
	ymin, ymax = ymin-by, ymax+by

	// The buffer must not push the path outside the raster.
	if xmin < fullXmin {
		xmin = fullXmin
	}
	if xmax > fullXmax {
		xmax = fullXmax
	}
	if ymin < fullYmin {
		ymin = fullYmin
	}
	if ymax > fullYmax {
		ymax = fullYmax
	}
	return xmin, ymin, xmax, ymax
}

// GeneratePath lays out n points across the grid's valid extent.
// left_to_right runs along the mid-height line, top_to_bottom down the
// mid-width line, diagonal from the top-left to the bottom-right corner.
func GeneratePath(g *raster.Grid, dir Direction, n int) ([]Point, error) {
	if n < 2 {
		return nil, fmt.Errorf("path needs at least 2 points, got %d", n)
	}
	xmin, ymin, xmax, ymax := ValidExtent(g)
	midX := (xmin + xmax) / 2
	midY := (ymin + ymax) / 2

	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		switch dir {
		case LeftToRight:
			pts[i] = Point{i, xmin + t*(xmax-xmin), midY}
		case TopToBottom:
			pts[i] = Point{i, midX, ymax - t*(ymax-ymin)}
		case Diagonal:
			pts[i] = Point{i, xmin + t*(xmax-xmin), ymax - t*(ymax-ymin)}
		default:
			return nil, fmt.Errorf("unknown scan direction %q", dir)
		}
	}
	return pts, nil
}

// WritePathPoints writes path_points.csv.
func WritePathPoints(path string, pts []Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Index", "X", "Y"}); err != nil {
		return err
	}
	for _, p := range pts {
		rec := []string{
			strconv.Itoa(p.Index),
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
