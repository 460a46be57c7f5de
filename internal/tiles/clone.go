package tiles

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
)

// Tile encoding mutates geometry in place, so every zoom level and
// every tile works on its own deep copy.

func cloneFeature(f *geojson.Feature) *geojson.Feature {
	clone := geojson.NewFeature(orb.Clone(f.Geometry))
	clone.ID = f.ID
	clone.Type = f.Type
	clone.Properties = f.Properties.Clone()
	copy(clone.BBox, f.BBox)
	return clone
}

func cloneCollection(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	clone := geojson.NewFeatureCollection()
	clone.Type = fc.Type
	copy(clone.BBox, fc.BBox)
	clone.Features = make([]*geojson.Feature, len(fc.Features))
	for i, f := range fc.Features {
		clone.Features[i] = cloneFeature(f)
	}
	return clone
}

func cloneLayers(layers mvt.Layers) mvt.Layers {
	clones := make(mvt.Layers, len(layers))
	for i, l := range layers {
		fc := cloneCollection(&geojson.FeatureCollection{Features: l.Features})
		clones[i] = &mvt.Layer{
			Name:     l.Name,
			Version:  l.Version,
			Extent:   l.Extent,
			Features: fc.Features,
		}
	}
	return clones
}
