// Package mask builds binary zone masks from terrain feature grids.
// A mask cell is 1 where every condition holds on valid data and 0
// everywhere else, including NoData cells, so downstream consumers can
// treat masks as gap-free rasters.
package mask

import (
	"fmt"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Comparison selects how a value relates to a threshold.
type Comparison string

const (
	Greater Comparison = "greater"
	Less    Comparison = "less"
	Equal   Comparison = "equal"
)

func (c Comparison) apply(v, threshold float64) bool {
	switch c {
	case Greater:
		return v > threshold
	case Less:
		return v < threshold
	case Equal:
		return v == threshold
	}
	return false
}

// Condition is one half of a mask definition: a feature compared against
// a threshold. When Percentile is set the threshold is taken from the
// feature's own value distribution; an explicit Threshold pins it
// instead.
type Condition struct {
	Feature    string
	Compare    Comparison
	Percentile float64  // used when Threshold is nil
	Threshold  *float64 // absolute override
}

// resolve returns the threshold to compare against, reading the
// percentile off the grid when no absolute value is pinned.
func (c Condition) resolve(g *raster.Grid) (float64, error) {
	if c.Threshold != nil {
		return *c.Threshold, nil
	}
	v, ok := g.Percentile(c.Percentile)
	if !ok {
		return 0, fmt.Errorf("feature %q has no valid cells to take p%g from", c.Feature, c.Percentile)
	}
	return v, nil
}

// Definition names a mask and the conditions that must all hold.
type Definition struct {
	Name       string
	Conditions []Condition
}

// Result is a built mask plus the bookkeeping that goes into
// mask_metadata.json.
type Result struct {
	Name       string              `json:"name"`
	Grid       *raster.Grid        `json:"-"`
	Inputs     []string            `json:"inputs"`
	Thresholds []ResolvedThreshold `json:"thresholds"`
	PixelCount uint                `json:"pixel_count"`
	TotalValid uint                `json:"total_valid_pixels"`
	AreaPct    float64             `json:"area_percent"`
}

// ResolvedThreshold records the threshold a condition actually used.
type ResolvedThreshold struct {
	Feature    string     `json:"feature"`
	Compare    Comparison `json:"comparison"`
	Percentile float64    `json:"percentile,omitempty"`
	Value      float64    `json:"value"`
}

// DefaultDefinitions returns the standard zone set: ridges, valleys and
// erosion-prone slopes, all cut at quartile thresholds.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "ridge", Conditions: []Condition{
			{Feature: "tpi", Compare: Greater, Percentile: 75},
			{Feature: "curvature", Compare: Less, Percentile: 25},
		}},
		{Name: "valley", Conditions: []Condition{
			{Feature: "tpi", Compare: Less, Percentile: 25},
			{Feature: "curvature", Compare: Greater, Percentile: 75},
		}},
		{Name: "erosion", Conditions: []Condition{
			{Feature: "slope", Compare: Greater, Percentile: 75},
			{Feature: "roughness", Compare: Greater, Percentile: 75},
		}},
	}
}

// Build evaluates a definition against the named feature grids. All
// referenced grids must share the first grid's shape.
func Build(def Definition, features map[string]*raster.Grid) (*Result, error) {
	if len(def.Conditions) == 0 {
		return nil, fmt.Errorf("mask %q has no conditions", def.Name)
	}
	grids := make([]*raster.Grid, len(def.Conditions))
	res := &Result{Name: def.Name}
	for i, cond := range def.Conditions {
		g, ok := features[cond.Feature]
		if !ok {
			return nil, fmt.Errorf("mask %q needs feature %q which is not loaded", def.Name, cond.Feature)
		}
		if i > 0 && (g.Ncols != grids[0].Ncols || g.Nrows != grids[0].Nrows) {
			return nil, fmt.Errorf("mask %q: feature %q shape %dx%d does not match %q",
				def.Name, cond.Feature, g.Ncols, g.Nrows, def.Conditions[0].Feature)
		}
		threshold, err := cond.resolve(g)
		if err != nil {
			return nil, fmt.Errorf("mask %q: %w", def.Name, err)
		}
		grids[i] = g
		res.Inputs = append(res.Inputs, cond.Feature)
		res.Thresholds = append(res.Thresholds, ResolvedThreshold{
			Feature:    cond.Feature,
			Compare:    cond.Compare,
			Percentile: cond.Percentile,
			Value:      threshold,
		})
	}

	ref := grids[0]
	out := raster.New(ref.Ncols, ref.Nrows, ref.Xllcorner, ref.Yllcorner, ref.CellSize)
	out.EPSG = ref.EPSG
	out.NoDataValue = raster.DefaultNoData
	for r := uint(0); r < ref.Nrows; r++ {
		for c := uint(0); c < ref.Ncols; c++ {
			out.Data[r][c] = 0
			hit := true
			valid := true
			for i, g := range grids {
				v := g.Data[r][c]
				if g.IsNoData(v) {
					valid = false
					break
				}
				if !res.Thresholds[i].Compare.apply(v, res.Thresholds[i].Value) {
					hit = false
				}
			}
			if !valid {
				continue
			}
			res.TotalValid++
			if hit {
				out.Data[r][c] = 1
				res.PixelCount++
			}
		}
	}
	if res.TotalValid > 0 {
		res.AreaPct = 100 * float64(res.PixelCount) / float64(res.TotalValid)
	}
	res.Grid = out
	return res, nil
}

// Threshold builds a single-feature mask against one condition.
func Threshold(name string, g *raster.Grid, cond Condition) (*Result, error) {
	return Build(
		Definition{Name: name, Conditions: []Condition{cond}},
		map[string]*raster.Grid{cond.Feature: g},
	)
}
