// Package render rasterizes grids into PNG visualizations: color
// relief, hillshade and grayscale images, plus preview sizes and a
// raster tile pyramid for map viewers.
package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// Stop is one entry of a color ramp.
type Stop struct {
	Value float64
	Color color.NRGBA
}

// Ramp maps values to colors by linear interpolation between stops.
type Ramp []Stop

// DefaultRamp returns the blue-green-red elevation ramp spread over
// [min, max].
func DefaultRamp(min, max float64) Ramp {
	span := max - min
	return Ramp{
		{min, color.NRGBA{0, 0, 255, 255}},
		{min + span*0.25, color.NRGBA{0, 128, 255, 255}},
		{min + span*0.5, color.NRGBA{0, 255, 0, 255}},
		{min + span*0.75, color.NRGBA{255, 255, 0, 255}},
		{max, color.NRGBA{255, 0, 0, 255}},
	}
}

// LoadColorTable reads a gdaldem-style color table: one "value r g b"
// line per stop, optional alpha, # comments.
func LoadColorTable(path string) (Ramp, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ramp Ramp
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s:%d: want at least 4 fields, got %d", path, lineNo, len(fields))
		}
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		channels := [4]uint8{0, 0, 0, 255}
		for i := 1; i < len(fields) && i < 5; i++ {
			ch, err := strconv.Atoi(fields[i])
			if err != nil || ch < 0 || ch > 255 {
				return nil, fmt.Errorf("%s:%d: bad channel value %q", path, lineNo, fields[i])
			}
			channels[i-1] = uint8(ch)
		}
		ramp = append(ramp, Stop{value, color.NRGBA{channels[0], channels[1], channels[2], channels[3]}})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(ramp) < 2 {
		return nil, fmt.Errorf("%s: color table needs at least 2 stops", path)
	}
	sort.SliceStable(ramp, func(i, j int) bool { return ramp[i].Value < ramp[j].Value })
	return ramp, nil
}

// At interpolates the ramp color for a value, clamping outside the stop
// range.
func (ramp Ramp) At(v float64) color.NRGBA {
	if v <= ramp[0].Value {
		return ramp[0].Color
	}
	last := ramp[len(ramp)-1]
	if v >= last.Value {
		return last.Color
	}
	for i := 1; i < len(ramp); i++ {
		if v > ramp[i].Value {
			continue
		}
		lo, hi := ramp[i-1], ramp[i]
		t := 0.0
		if hi.Value > lo.Value {
			t = (v - lo.Value) / (hi.Value - lo.Value)
		}
		return color.NRGBA{
			R: lerp(lo.Color.R, hi.Color.R, t),
			G: lerp(lo.Color.G, hi.Color.G, t),
			B: lerp(lo.Color.B, hi.Color.B, t),
			A: lerp(lo.Color.A, hi.Color.A, t),
		}
	}
	return last.Color
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + t*(float64(b)-float64(a)) + 0.5)
}

// ColorRelief renders the grid through a ramp. NoData cells come out
// fully transparent. A nil ramp uses the default one over the grid's
// value range.
func ColorRelief(g *raster.Grid, ramp Ramp) *image.NRGBA {
	if ramp == nil {
		stats := g.ComputeStats()
		ramp = DefaultRamp(stats.Min, stats.Max)
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(g.Ncols), int(g.Nrows)))
	for r := uint(0); r < g.Nrows; r++ {
		for c := uint(0); c < g.Ncols; c++ {
			v := g.Data[r][c]
			if g.IsNoData(v) {
				continue
			}
			img.SetNRGBA(int(c), int(r), ramp.At(v))
		}
	}
	return img
}
