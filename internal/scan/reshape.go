package scan

import (
	"encoding/csv"
	"fmt"
	"image"
	_ "image/png" // reference images are rendered PNGs
	"os"
	"sort"
	"strconv"
)

// ImageDims reads the pixel dimensions of a reference image.
func ImageDims(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// WriteFullGridCSV maps the combined series onto a width x height pixel
// lattice spanning extent, one row per pixel in column-major order
// (x fast within each y would be row-major; here columns advance
// outermost so a column plays back as a run of consecutive rows). Each
// pixel snaps to the closest data X and the closest data Y
// independently, so a straight scan line spreads across the whole
// image; a pixel carries empty feature values only when no data point
// has that snapped (x, y) combination.
func WriteFullGridCSV(path string, featureNames []string, rows []CombinedRow,
	width, height int, xmin, ymin, xmax, ymax float64) error {

	if width <= 0 || height <= 0 {
		return fmt.Errorf("bad reference dimensions %dx%d", width, height)
	}
	xres := (xmax - xmin) / float64(width)
	yres := (ymax - ymin) / float64(height)

	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	type dataKey struct{ x, y float64 }
	byXY := make(map[dataKey]*CombinedRow, len(rows))
	for i := range rows {
		xs = append(xs, rows[i].X)
		ys = append(ys, rows[i].Y)
		byXY[dataKey{rows[i].X, rows[i].Y}] = &rows[i]
	}
	xs = sortedUnique(xs)
	ys = sortedUnique(ys)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"pixel_x", "pixel_y", "world_x", "world_y"}, featureNames...)
	if err := w.Write(header); err != nil {
		return err
	}
	empty := make([]string, len(featureNames))
	for px := 0; px < width; px++ {
		for py := 0; py < height; py++ {
			wx := xmin + (float64(px)+0.5)*xres
			wy := ymax - (float64(py)+0.5)*yres
			rec := []string{
				strconv.Itoa(px),
				strconv.Itoa(py),
				strconv.FormatFloat(wx, 'f', 6, 64),
				strconv.FormatFloat(wy, 'f', 6, 64),
			}
			var hit *CombinedRow
			if len(xs) > 0 {
				hit = byXY[dataKey{nearest(xs, wx), nearest(ys, wy)}]
			}
			if hit != nil {
				for _, v := range hit.Values {
					if v == nil {
						rec = append(rec, "")
					} else {
						rec = append(rec, strconv.FormatFloat(*v, 'f', -1, 64))
					}
				}
			} else {
				rec = append(rec, empty...)
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// sortedUnique sorts vals and drops duplicates in place.
func sortedUnique(vals []float64) []float64 {
	sort.Float64s(vals)
	out := vals[:0]
	for i, v := range vals {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// nearest returns the element of the sorted slice closest to v, the
// lower one on ties.
func nearest(sorted []float64, v float64) float64 {
	i := sort.SearchFloat64s(sorted, v)
	if i == 0 {
		return sorted[0]
	}
	if i == len(sorted) {
		return sorted[len(sorted)-1]
	}
	if v-sorted[i-1] <= sorted[i]-v {
		return sorted[i-1]
	}
	return sorted[i]
}

// WriteColumnAggregatedCSV writes one row per pixel column with the
// per-feature median over that column's data points. Columns without
// points carry empty values.
func WriteColumnAggregatedCSV(path string, featureNames []string, rows []CombinedRow,
	width int, xmin, xmax float64) error {

	if width <= 0 {
		return fmt.Errorf("bad reference width %d", width)
	}
	xres := (xmax - xmin) / float64(width)

	columns := make([][][]float64, width)
	for px := range columns {
		columns[px] = make([][]float64, len(featureNames))
	}
	for i := range rows {
		px := int((rows[i].X - xmin) / xres)
		if px < 0 || px >= width {
			continue
		}
		for fi, v := range rows[i].Values {
			if v != nil {
				columns[px][fi] = append(columns[px][fi], *v)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"pixel_x", "world_x"}, featureNames...)
	if err := w.Write(header); err != nil {
		return err
	}
	for px := 0; px < width; px++ {
		wx := xmin + (float64(px)+0.5)*xres
		rec := []string{strconv.Itoa(px), strconv.FormatFloat(wx, 'f', 6, 64)}
		for fi := range featureNames {
			vals := columns[px][fi]
			if len(vals) == 0 {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(median(vals), 'f', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	m := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[m]
	}
	return (sorted[m-1] + sorted[m]) / 2
}

// SortColumnwise orders combined rows by X, then Y, so playback walks
// the data column by column regardless of the original path direction.
func SortColumnwise(rows []CombinedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].X != rows[j].X {
			return rows[i].X < rows[j].X
		}
		return rows[i].Y < rows[j].Y
	})
}
