package scan

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Sample is one valid measurement along a path. Index keeps the
// position in the original path, so gaps stay visible downstream.
type Sample struct {
	Index int
	X, Y  float64
	Value float64
}

// LowCoverageThreshold is the valid fraction below which a series is
// considered too sparse to sonify well.
const LowCoverageThreshold = 0.25

// Extract samples the grid at every path point and drops points that
// fall outside the grid or on NoData. The returned fraction is
// valid samples over path points.
func Extract(g *raster.Grid, pts []Point) (samples []Sample, validFraction float64) {
	samples = make([]Sample, 0, len(pts))
	for _, p := range pts {
		v, ok := g.ValueAt(p.X, p.Y)
		if !ok {
			continue
		}
		samples = append(samples, Sample{Index: p.Index, X: p.X, Y: p.Y, Value: v})
	}
	if len(pts) > 0 {
		validFraction = float64(len(samples)) / float64(len(pts))
	}
	return samples, validFraction
}

// WriteSeriesCSV writes a per-feature series as Index,X,Y,Value.
func WriteSeriesCSV(path string, samples []Sample) error {
	return writeSeries(path, samples, nil)
}

// WriteSeriesWithAverage writes Index,X,Y,Value,MovingAvg. Rows without
// a full window carry an empty MovingAvg.
func WriteSeriesWithAverage(path string, samples []Sample, avg []*float64) error {
	return writeSeries(path, samples, avg)
}

func writeSeries(path string, samples []Sample, avg []*float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"Index", "X", "Y", "Value"}
	if avg != nil {
		header = append(header, "MovingAvg")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, s := range samples {
		rec := []string{
			strconv.Itoa(s.Index),
			strconv.FormatFloat(s.X, 'f', -1, 64),
			strconv.FormatFloat(s.Y, 'f', -1, 64),
			strconv.FormatFloat(s.Value, 'f', -1, 64),
		}
		if avg != nil {
			cell := ""
			if i < len(avg) && avg[i] != nil {
				cell = strconv.FormatFloat(*avg[i], 'f', -1, 64)
			}
			rec = append(rec, cell)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
