package zonal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// header returns the CSV header for a statistic selection.
func header(stats []string) []string {
	return append([]string{"zone", "feature"}, stats...)
}

func row(s Summary, stats []string) ([]string, error) {
	rec := []string{s.Zone, s.Feature}
	for _, stat := range stats {
		v, err := s.Value(stat)
		if err != nil {
			return nil, err
		}
		rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return rec, nil
}

// WriteCSV writes summaries with the selected statistics as columns.
// Used for the per-zone files and for all_zones_statistics.csv alike;
// the summaries passed in decide the coverage.
func WriteCSV(path string, summaries []Summary, stats []string) error {
	if len(stats) == 0 {
		stats = DefaultStatistics
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header(stats)); err != nil {
		return err
	}
	for _, s := range summaries {
		rec, err := row(s, stats)
		if err != nil {
			return err
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// FilterZone returns the summaries belonging to one zone.
func FilterZone(summaries []Summary, zone string) []Summary {
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if s.Zone == zone {
			out = append(out, s)
		}
	}
	return out
}

// Metadata is zonal_statistics_metadata.json.
type Metadata struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Statistics  []string          `json:"statistics"`
	Zones       []string          `json:"zones"`
	Features    []string          `json:"features"`
	Files       map[string]string `json:"files"`
}

// WriteMetadata writes the stage manifest.
func WriteMetadata(path, runID string, stats, zones, features []string, files map[string]string) error {
	if len(stats) == 0 {
		stats = DefaultStatistics
	}
	meta := Metadata{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Statistics:  stats,
		Zones:       zones,
		Features:    features,
		Files:       files,
	}
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ValidateStats rejects statistic names Compute cannot produce.
func ValidateStats(stats []string) error {
	for _, stat := range stats {
		found := false
		for _, known := range AllStatistics {
			if stat == known {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown statistic %q (have %v)", stat, AllStatistics)
		}
	}
	return nil
}
