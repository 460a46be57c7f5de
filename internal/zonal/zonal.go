// Package zonal summarizes terrain feature rasters inside mask zones.
// A zone is the set of cells where a binary mask is 1; statistics run
// over cells that are both in the zone and valid in the feature raster.
package zonal

import (
	"fmt"
	"math"
	"sort"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// AllStatistics lists every statistic Compute can produce, in output
// order.
var AllStatistics = []string{"count", "sum", "mean", "median", "stddev", "min", "max", "range"}

// DefaultStatistics is the subset written when the config does not
// choose its own.
var DefaultStatistics = []string{"mean", "stddev", "min", "max", "range"}

// Summary holds every statistic for one zone/feature pair.
type Summary struct {
	Zone    string  `json:"zone"`
	Feature string  `json:"feature"`
	Count   uint    `json:"count"`
	Sum     float64 `json:"sum"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"stddev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Range   float64 `json:"range"`
}

// Value returns a statistic by name.
func (s Summary) Value(stat string) (float64, error) {
	switch stat {
	case "count":
		return float64(s.Count), nil
	case "sum":
		return s.Sum, nil
	case "mean":
		return s.Mean, nil
	case "median":
		return s.Median, nil
	case "stddev":
		return s.StdDev, nil
	case "min":
		return s.Min, nil
	case "max":
		return s.Max, nil
	case "range":
		return s.Range, nil
	}
	return 0, fmt.Errorf("unknown statistic %q", stat)
}

// Compute summarizes a feature raster within a mask zone. The mask must
// match the feature's shape. A zone with no valid overlap yields a
// Summary with Count 0 and NaN moments.
func Compute(zone, feature string, mask, values *raster.Grid) (Summary, error) {
	if mask.Ncols != values.Ncols || mask.Nrows != values.Nrows {
		return Summary{}, fmt.Errorf("zone %q mask %dx%d does not match feature %q %dx%d",
			zone, mask.Ncols, mask.Nrows, feature, values.Ncols, values.Nrows)
	}
	s := Summary{Zone: zone, Feature: feature}
	cells := make([]float64, 0, 256)
	for r := uint(0); r < mask.Nrows; r++ {
		for c := uint(0); c < mask.Ncols; c++ {
			if mask.Data[r][c] != 1 {
				continue
			}
			v := values.Data[r][c]
			if values.IsNoData(v) || math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			cells = append(cells, v)
		}
	}
	if len(cells) == 0 {
		s.Mean, s.Median, s.StdDev = math.NaN(), math.NaN(), math.NaN()
		s.Min, s.Max, s.Range = math.NaN(), math.NaN(), math.NaN()
		return s, nil
	}

	sort.Float64s(cells)
	n := float64(len(cells))
	s.Count = uint(len(cells))
	s.Min = cells[0]
	s.Max = cells[len(cells)-1]
	s.Range = s.Max - s.Min
	for _, v := range cells {
		s.Sum += v
	}
	s.Mean = s.Sum / n
	variance := 0.0
	for _, v := range cells {
		d := v - s.Mean
		variance += d * d
	}
	s.StdDev = math.Sqrt(variance / n)
	if m := len(cells) / 2; len(cells)%2 == 1 {
		s.Median = cells[m]
	} else {
		s.Median = (cells[m-1] + cells[m]) / 2
	}
	return s, nil
}

// ComputeAll crosses every zone with every feature, in map-stable order
// given by zoneNames and featureNames.
func ComputeAll(zoneNames []string, zones map[string]*raster.Grid,
	featureNames []string, features map[string]*raster.Grid) ([]Summary, error) {

	out := make([]Summary, 0, len(zoneNames)*len(featureNames))
	for _, zn := range zoneNames {
		mask, ok := zones[zn]
		if !ok {
			return nil, fmt.Errorf("zone %q is not loaded", zn)
		}
		for _, fn := range featureNames {
			values, ok := features[fn]
			if !ok {
				return nil, fmt.Errorf("feature %q is not loaded", fn)
			}
			s, err := Compute(zn, fn, mask, values)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}
