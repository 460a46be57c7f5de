// Package vectorize turns zone masks and elevation grids into GeoJSON
// geometry: zone polygons, centroids, elevation contours and peaks.
package vectorize

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Zone is one connected region of a mask with its derived geometry.
type Zone struct {
	ID        int
	Polygon   orb.Polygon
	Centroid  orb.Point
	Area      float64
	CellCount int
}

// Polygonize traces the 4-connected regions of cells where mask==1 into
// polygons with holes. Cell edges become polygon edges, so a single cell
// yields its exact square footprint. Zones come back ordered by
// descending area and numbered from 1.
func Polygonize(mask *raster.Grid) []Zone {
	ncols, nrows := int(mask.Ncols), int(mask.Nrows)
	labels := make([]int, ncols*nrows)
	next := 0
	counts := []int{}

	// Label connected components with a scanline BFS.
	queue := make([]int, 0, 64)
	for r := 0; r < nrows; r++ {
		for c := 0; c < ncols; c++ {
			idx := r*ncols + c
			if labels[idx] != 0 || mask.Data[r][c] != 1 {
				continue
			}
			next++
			counts = append(counts, 0)
			labels[idx] = next
			queue = append(queue[:0], idx)
			for len(queue) > 0 {
				cur := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				counts[next-1]++
				cc, cr := cur%ncols, cur/ncols
				for _, d := range [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
					nc, nr := cc+d[0], cr+d[1]
					if nc < 0 || nc >= ncols || nr < 0 || nr >= nrows {
						continue
					}
					nidx := nr*ncols + nc
					if labels[nidx] == 0 && mask.Data[nr][nc] == 1 {
						labels[nidx] = next
						queue = append(queue, nidx)
					}
				}
			}
		}
	}

	zones := make([]Zone, 0, next)
	for label := 1; label <= next; label++ {
		rings := traceRings(mask, labels, label)
		poly := assemblePolygon(rings)
		if len(poly) == 0 {
			continue
		}
		centroid, area := planar.CentroidArea(poly)
		zones = append(zones, Zone{
			Polygon:   poly,
			Centroid:  centroid,
			Area:      area,
			CellCount: counts[label-1],
		})
	}
	sort.SliceStable(zones, func(i, j int) bool { return zones[i].Area > zones[j].Area })
	for i := range zones {
		zones[i].ID = i + 1
	}
	return zones
}

type edge struct{ from, to orb.Point }

// traceRings walks the boundary of one labelled component and stitches
// its cell edges into closed rings. Edges are directed with the
// component interior on the left, so outer rings come out
// counterclockwise and holes clockwise.
func traceRings(mask *raster.Grid, labels []int, label int) []orb.Ring {
	ncols, nrows := int(mask.Ncols), int(mask.Nrows)
	in := func(c, r int) bool {
		if c < 0 || c >= ncols || r < 0 || r >= nrows {
			return false
		}
		return labels[r*ncols+c] == label
	}
	// Corner coordinates. Row r's top edge sits one cell size above the
	// cell-center Y.
	cx := func(c int) float64 { return mask.Xllcorner + float64(c)*mask.CellSize }
	cy := func(r int) float64 { return mask.Yllcorner + float64(int(mask.Nrows)-r)*mask.CellSize }

	outgoing := map[orb.Point][]edge{}
	addEdge := func(from, to orb.Point) {
		outgoing[from] = append(outgoing[from], edge{from, to})
	}
	for r := 0; r < nrows; r++ {
		for c := 0; c < ncols; c++ {
			if !in(c, r) {
				continue
			}
			tl := orb.Point{cx(c), cy(r)}
			tr := orb.Point{cx(c + 1), cy(r)}
			bl := orb.Point{cx(c), cy(r + 1)}
			br := orb.Point{cx(c + 1), cy(r + 1)}
			if !in(c, r-1) {
				addEdge(tr, tl)
			}
			if !in(c, r+1) {
				addEdge(bl, br)
			}
			if !in(c-1, r) {
				addEdge(tl, bl)
			}
			if !in(c+1, r) {
				addEdge(br, tr)
			}
		}
	}

	var rings []orb.Ring
	for len(outgoing) > 0 {
		// Pick any remaining edge as a ring start.
		var start edge
		for _, edges := range outgoing {
			start = edges[0]
			break
		}
		ring := orb.Ring{start.from}
		cur := start
		for {
			consume(outgoing, cur)
			ring = append(ring, cur.to)
			if cur.to.Equal(start.from) {
				break
			}
			candidates := outgoing[cur.to]
			if len(candidates) == 0 {
				break
			}
			// Where two diagonal cells pinch at a corner there are two
			// ways onward; the left-most turn keeps this ring simple.
			cur = leftmostTurn(cur, candidates)
		}
		if len(ring) >= 4 && ring[0].Equal(ring[len(ring)-1]) {
			rings = append(rings, ring)
		}
	}
	return rings
}

func consume(outgoing map[orb.Point][]edge, e edge) {
	edges := outgoing[e.from]
	for i := range edges {
		if edges[i].to.Equal(e.to) {
			edges[i] = edges[len(edges)-1]
			edges = edges[:len(edges)-1]
			break
		}
	}
	if len(edges) == 0 {
		delete(outgoing, e.from)
	} else {
		outgoing[e.from] = edges
	}
}

// leftmostTurn picks the outgoing edge that turns hardest to the left
// relative to the incoming direction.
func leftmostTurn(incoming edge, candidates []edge) edge {
	if len(candidates) == 1 {
		return candidates[0]
	}
	idx, idy := incoming.to[0]-incoming.from[0], incoming.to[1]-incoming.from[1]
	best := candidates[0]
	bestScore := turnScore(idx, idy, best)
	for _, cand := range candidates[1:] {
		if s := turnScore(idx, idy, cand); s > bestScore {
			best, bestScore = cand, s
		}
	}
	return best
}

// turnScore ranks a candidate edge by turn direction: left turns beat
// straight ahead, straight beats right.
func turnScore(idx, idy float64, cand edge) float64 {
	odx, ody := cand.to[0]-cand.from[0], cand.to[1]-cand.from[1]
	return idx*ody - idy*odx
}

// assemblePolygon splits rings into the single counterclockwise outer
// ring and its clockwise holes.
func assemblePolygon(rings []orb.Ring) orb.Polygon {
	var outer orb.Ring
	var holes []orb.Ring
	for _, ring := range rings {
		if planar.Area(ring) > 0 {
			outer = ring
		} else {
			holes = append(holes, ring)
		}
	}
	if outer == nil {
		return nil
	}
	return append(orb.Polygon{outer}, holes...)
}

// Features converts zones to GeoJSON features carrying the zone name.
func Features(zoneName string, zones []Zone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(z.Polygon)
		f.Properties["zone"] = zoneName
		f.Properties["zone_id"] = z.ID
		f.Properties["area"] = z.Area
		f.Properties["cell_count"] = z.CellCount
		fc.Append(f)
	}
	return fc
}

// Centroids converts zones to GeoJSON point features.
func Centroids(zoneName string, zones []Zone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(z.Centroid)
		f.Properties["zone"] = zoneName
		f.Properties["zone_id"] = z.ID
		f.Properties["area"] = z.Area
		fc.Append(f)
	}
	return fc
}
