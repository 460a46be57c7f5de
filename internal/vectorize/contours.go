package vectorize

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Contours traces iso-elevation lines with marching squares over the
// cell-center lattice, one line string set per level. Squares touching
// NoData are skipped, so contour lines stop at data gaps.
func Contours(g *raster.Grid, levels []float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, level := range levels {
		for _, line := range contourLines(g, level) {
			f := geojson.NewFeature(line)
			f.Properties["elevation"] = level
			f.Properties["text"] = fmt.Sprintf("%.0f", math.Round(level))
			fc.Append(f)
		}
	}
	return fc
}

// ContourLevels returns evenly spaced levels covering the grid's valid
// elevation range, aligned to multiples of interval.
func ContourLevels(g *raster.Grid, interval float64) []float64 {
	if interval <= 0 {
		return nil
	}
	stats := g.ComputeStats()
	if stats.ValidCells == 0 {
		return nil
	}
	levels := []float64{}
	for level := math.Ceil(stats.Min/interval) * interval; level <= stats.Max; level += interval {
		levels = append(levels, level)
	}
	return levels
}

// contourLines walks every 2x2 square of cell centers and stitches the
// produced segments into the longest possible line strings.
func contourLines(g *raster.Grid, level float64) []orb.LineString {
	lines := []orb.LineString{}

	for col := uint(0); col+1 < g.Ncols; col++ {
		for row := uint(0); row+1 < g.Nrows; row++ {
			newLines := squareLines(g, col, row, level)

			for _, newLine := range newLines {
				combinable := []int{}
				for j := 0; j < len(lines); j++ {
					if ok, _ := canCombineLines(newLine, lines[j]); ok {
						combinable = append(combinable, j)
						if len(combinable) == 2 {
							break
						}
					}
				}

				if len(combinable) == 0 {
					lines = append(lines, newLine)
					continue
				}
				combined := newLine
				for _, index := range combinable {
					_, combined = combineLines(combined, lines[index])
				}
				lines[combinable[0]] = combined
				if len(combinable) == 2 {
					lines[combinable[1]] = lines[len(lines)-1]
					lines[len(lines)-1] = nil
					lines = lines[:len(lines)-1]
				}
			}
		}
	}

	return lines
}

func squareLines(g *raster.Grid, col, row uint, level float64) []orb.LineString {
	tl := g.Z(col, row)
	tr := g.Z(col+1, row)
	br := g.Z(col+1, row+1)
	bl := g.Z(col, row+1)
	if g.IsNoData(tl) || g.IsNoData(tr) || g.IsNoData(br) || g.IsNoData(bl) {
		return nil
	}

	leftX := g.X(col)
	rightX := g.X(col + 1)
	bottomY := g.Y(row + 1)
	topY := g.Y(row)

	index := uint(0)
	if tl > level {
		index |= 8
	}
	if tr > level {
		index |= 4
	}
	if br > level {
		index |= 2
	}
	if bl > level {
		index |= 1
	}

	topEdge := func() orb.Point {
		return orb.Point{interpolate(leftX, tl, rightX, tr, level), topY}
	}
	leftEdge := func() orb.Point {
		return orb.Point{leftX, interpolate(bottomY, bl, topY, tl, level)}
	}
	bottomEdge := func() orb.Point {
		return orb.Point{interpolate(leftX, bl, rightX, br, level), bottomY}
	}
	rightEdge := func() orb.Point {
		return orb.Point{rightX, interpolate(bottomY, br, topY, tr, level)}
	}

	switch index {
	case 0, 15:
		return nil
	case 1, 14:
		return []orb.LineString{{bottomEdge(), leftEdge()}}
	case 2, 13:
		return []orb.LineString{{rightEdge(), bottomEdge()}}
	case 3, 12:
		return []orb.LineString{{rightEdge(), leftEdge()}}
	case 4, 11:
		return []orb.LineString{{topEdge(), rightEdge()}}
	case 5:
		return []orb.LineString{
			{leftEdge(), topEdge()},
			{bottomEdge(), rightEdge()},
		}
	case 6, 9:
		return []orb.LineString{{topEdge(), bottomEdge()}}
	case 7, 8:
		return []orb.LineString{{leftEdge(), topEdge()}}
	case 10:
		return []orb.LineString{
			{leftEdge(), bottomEdge()},
			{topEdge(), rightEdge()},
		}
	}
	return nil
}

func interpolate(c0, h0, c1, h1, level float64) float64 {
	return (c0*(h1-level) + c1*(level-h0)) / (h1 - h0)
}

// canCombineLines reports whether two lines share an endpoint. The
// second result says l2 comes first in the combined line.
func canCombineLines(l1, l2 orb.LineString) (bool, bool) {
	len1 := len(l1) - 1
	len2 := len(l2) - 1

	if l1[len1].Equal(l2[0]) {
		return true, false
	}
	if l2[len2].Equal(l1[0]) {
		return true, true
	}

	l2.Reverse()

	if l1[len1].Equal(l2[0]) {
		return true, false
	}
	if l2[len2].Equal(l1[0]) {
		return true, true
	}
	return false, false
}

func combineLines(l1, l2 orb.LineString) (bool, orb.LineString) {
	ok, reversed := canCombineLines(l1, l2)
	if !ok {
		return false, nil
	}
	if reversed {
		return true, stitchLines(l2, l1)
	}
	return true, stitchLines(l1, l2)
}

// stitchLines appends line2 to line1, dropping line2's first point since
// it equals line1's last.
func stitchLines(line1, line2 orb.LineString) orb.LineString {
	for i := 1; i < len(line2); i++ {
		line1 = append(line1, line2[i])
	}
	return line1
}
