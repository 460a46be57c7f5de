package scan

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CombinedRow is one path point with the values of every feature that
// covered it. Missing features are nil.
type CombinedRow struct {
	Index  int
	X, Y   float64
	Values []*float64 // parallel to the feature name list
}

// Combine aligns per-feature series on the first feature's path points.
// A feature missing a point (dropped as NoData there) contributes nil
// for that row.
func Combine(featureNames []string, series map[string][]Sample) ([]CombinedRow, error) {
	if len(featureNames) == 0 {
		return nil, fmt.Errorf("no features to combine")
	}
	base, ok := series[featureNames[0]]
	if !ok {
		return nil, fmt.Errorf("series for %q missing", featureNames[0])
	}

	byIndex := make([]map[int]float64, len(featureNames))
	for i, name := range featureNames {
		s, ok := series[name]
		if !ok {
			return nil, fmt.Errorf("series for %q missing", name)
		}
		byIndex[i] = make(map[int]float64, len(s))
		for _, sample := range s {
			byIndex[i][sample.Index] = sample.Value
		}
	}

	rows := make([]CombinedRow, len(base))
	for i, sample := range base {
		row := CombinedRow{
			Index:  sample.Index,
			X:      sample.X,
			Y:      sample.Y,
			Values: make([]*float64, len(featureNames)),
		}
		for fi := range featureNames {
			if v, ok := byIndex[fi][sample.Index]; ok {
				v := v
				row.Values[fi] = &v
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// WriteCombinedCSV writes Index,X,Y followed by one column per feature.
func WriteCombinedCSV(path string, featureNames []string, rows []CombinedRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"Index", "X", "Y"}, featureNames...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec,
			strconv.Itoa(row.Index),
			strconv.FormatFloat(row.X, 'f', -1, 64),
			strconv.FormatFloat(row.Y, 'f', -1, 64),
		)
		for _, v := range row.Values {
			if v == nil {
				rec = append(rec, "")
			} else {
				rec = append(rec, strconv.FormatFloat(*v, 'f', -1, 64))
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCombinedCSV parses a combined CSV back into rows, returning the
// feature names from the header. Empty cells become nil values.
func ReadCombinedCSV(path string) ([]string, []CombinedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 || len(records[0]) < 3 {
		return nil, nil, fmt.Errorf("%s: not a combined series CSV", path)
	}
	featureNames := records[0][3:]

	rows := make([]CombinedRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, nil, fmt.Errorf("%s: row has %d fields, header has %d", path, len(rec), len(records[0]))
		}
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s: bad index %q", path, rec[0])
		}
		x, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: bad X %q", path, rec[1])
		}
		y, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: bad Y %q", path, rec[2])
		}
		row := CombinedRow{Index: idx, X: x, Y: y, Values: make([]*float64, len(featureNames))}
		for i, cell := range rec[3:] {
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: bad value %q", path, cell)
			}
			row.Values[i] = &v
		}
		rows = append(rows, row)
	}
	return featureNames, rows, nil
}
