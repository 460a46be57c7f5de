package vectorize

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// SampleGrid probes an n x n lattice over the reference grid's extent
// and returns one point feature per probe that hits valid data, with one
// property per feature raster. Features with NoData at a probe simply
// omit the property.
func SampleGrid(ref *raster.Grid, featureNames []string,
	features map[string]*raster.Grid, n int) *geojson.FeatureCollection {

	fc := geojson.NewFeatureCollection()
	if n < 1 {
		return fc
	}
	xmin, ymin, xmax, ymax := ref.Extent()
	id := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := xmin + (float64(i)+0.5)*(xmax-xmin)/float64(n)
			y := ymin + (float64(j)+0.5)*(ymax-ymin)/float64(n)
			if _, ok := ref.ValueAt(x, y); !ok {
				continue
			}
			f := geojson.NewFeature(orb.Point{x, y})
			f.Properties["id"] = id
			for _, name := range featureNames {
				g, ok := features[name]
				if !ok {
					continue
				}
				if v, ok := g.ValueAt(x, y); ok {
					f.Properties[name] = v
				}
			}
			fc.Append(f)
			id++
		}
	}
	return fc
}
