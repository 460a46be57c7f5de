package vectorize

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Peaks finds local elevation maxima: interior cells strictly above all
// eight neighbors. Cells sharing a neighbor's elevation are plateau
// members, not peaks. Returns point features sorted by ascending
// elevation.
func Peaks(g *raster.Grid) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for row := uint(1); row+1 < g.Nrows; row++ {
		for col := uint(1); col+1 < g.Ncols; col++ {
			elevation := g.Data[row][col]
			if g.IsNoData(elevation) {
				continue
			}

			higher := false
			lower := false
			for cr := row - 1; cr <= row+1 && !(higher && lower); cr++ {
				for cc := col - 1; cc <= col+1; cc++ {
					if cr == row && cc == col {
						continue
					}
					neighbor := g.Data[cr][cc]
					if g.IsNoData(neighbor) || neighbor == elevation {
						// Gaps and plateau edges both disqualify the cell.
						higher, lower = true, true
						break
					}
					higher = higher || neighbor > elevation
					lower = lower || neighbor < elevation
				}
			}

			if lower && !higher {
				f := geojson.NewFeature(orb.Point{g.X(col), g.Y(row)})
				f.Properties["elevation"] = elevation
				f.Properties["text"] = fmt.Sprintf("%.0f", math.Round(elevation))
				fc.Append(f)
			}
		}
	}

	sort.SliceStable(fc.Features, func(i, j int) bool {
		return fc.Features[i].Properties["elevation"].(float64) <
			fc.Features[j].Properties["elevation"].(float64)
	})
	return fc
}
