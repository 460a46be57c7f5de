package mask

import (
	"encoding/json"
	"os"
	"time"
)

// Entry describes one written mask in mask_metadata.json.
type Entry struct {
	*Result
	Path      string `json:"path"`
	CleanPath string `json:"clean_path,omitempty"`
}

// Metadata is the stage manifest written next to the mask rasters.
type Metadata struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Masks       []Entry   `json:"masks"`
}

// WriteMetadata writes mask_metadata.json.
func WriteMetadata(path, runID string, entries []Entry) error {
	meta := Metadata{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Masks:       entries,
	}
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
