package terrain

import (
	"fmt"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Options selects what Derive computes.
type Options struct {
	ZFactor       float64
	EntropyScales []int
}

// DefaultOptions matches the standard analysis run.
func DefaultOptions() Options {
	return Options{ZFactor: 1, EntropyScales: []int{3, 4, 5}}
}

// FeatureSet maps feature names to derived grids.
type FeatureSet map[string]*raster.Grid

// Names returns the feature names in a stable order: the fixed features
// first, then entropy rasters by ascending scale.
func (opts Options) Names() []string {
	names := []string{
		"slope", "aspect", "roughness", "tpi", "tri",
		"curvature", "planform_curvature", "twi",
	}
	for _, scale := range opts.EntropyScales {
		names = append(names, fmt.Sprintf("spectral_entropy_scale%d", scale))
	}
	return names
}

// Derive computes every terrain feature from the elevation grid.
func Derive(g *raster.Grid, opts Options) FeatureSet {
	if opts.ZFactor == 0 {
		opts.ZFactor = 1
	}
	profile, planform := Curvature(g)
	fs := FeatureSet{
		"slope":              Slope(g, opts.ZFactor),
		"aspect":             Aspect(g),
		"roughness":          Roughness(g),
		"tpi":                TPI(g),
		"tri":                TRI(g),
		"curvature":          profile,
		"planform_curvature": planform,
		"twi":                TWI(g),
	}
	for _, scale := range opts.EntropyScales {
		fs[fmt.Sprintf("spectral_entropy_scale%d", scale)] = Entropy(g, scale)
	}
	return fs
}
