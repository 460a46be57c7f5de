package vectorize

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
)

// WriteGeoJSON writes a feature collection to path, gzipping when the
// name ends in .gz.
func WriteGeoJSON(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(data); err != nil {
			return err
		}
		return gz.Close()
	}
	_, err = f.Write(data)
	return err
}

// ReadGeoJSON loads a feature collection, transparently un-gzipping.
func ReadGeoJSON(path string) (*geojson.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(data)
}

// Merge concatenates feature collections into one.
func Merge(fcs ...*geojson.FeatureCollection) *geojson.FeatureCollection {
	merged := geojson.NewFeatureCollection()
	for _, fc := range fcs {
		merged.Features = append(merged.Features, fc.Features...)
	}
	return merged
}

// Metadata is vector_metadata.json.
type Metadata struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	EPSG        int            `json:"epsg,omitempty"`
	Layers      map[string]int `json:"layers"` // layer name -> feature count
	Files       []string       `json:"files"`
}

// WriteMetadata writes the stage manifest next to the GeoJSON layers.
func WriteMetadata(dir, runID string, epsg int, layers map[string]int, files []string) error {
	meta := Metadata{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		EPSG:        epsg,
		Layers:      layers,
		Files:       files,
	}
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "vector_metadata.json"), data, 0644)
}
