package scan

import (
	"encoding/json"
	"os"
	"time"
)

// SeriesInfo summarizes one extracted feature series for the manifest.
type SeriesInfo struct {
	Feature       string  `json:"feature"`
	File          string  `json:"file"`
	ValidPoints   int     `json:"valid_points"`
	TotalPoints   int     `json:"total_points"`
	ValidFraction float64 `json:"valid_fraction"`
	LowCoverage   bool    `json:"low_coverage"`
}

// Metadata is temporal_simulation_metadata.json.
type Metadata struct {
	RunID       string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Direction   Direction    `json:"direction"`
	PathPoints  int          `json:"path_points"`
	Extent      [4]float64   `json:"scan_extent"` // xmin, ymin, xmax, ymax
	WindowSizes []int        `json:"moving_average_windows,omitempty"`
	Series      []SeriesInfo `json:"series"`
	Files       []string     `json:"files,omitempty"`
}

// WriteMetadata writes the stage manifest.
func (m Metadata) Write(path string) error {
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
