// Package meta tracks pipeline runs: a manifest linking the stage
// outputs of one run, and the input checks each stage performs before
// touching anything.
package meta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ManifestName is the manifest file written into the run's output root.
const ManifestName = "run_manifest.json"

// StageRecord is one completed stage in the manifest.
type StageRecord struct {
	Stage      string    `json:"stage"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Inputs     []string  `json:"inputs,omitempty"`
	Outputs    []string  `json:"outputs,omitempty"`
}

// Manifest links every stage of a run under one ID.
type Manifest struct {
	RunID     string        `json:"run_id"`
	Dataset   string        `json:"dataset"`
	CreatedAt time.Time     `json:"created_at"`
	Stages    []StageRecord `json:"stages"`

	path string
}

// NewManifest starts a manifest for a fresh run.
func NewManifest(dir, dataset string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Dataset:   dataset,
		CreatedAt: time.Now().UTC(),
		path:      filepath.Join(dir, ManifestName),
	}
}

// LoadManifest continues an existing run, or starts a new one when the
// directory holds no manifest yet.
func LoadManifest(dir, dataset string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(dir, dataset), nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	m.path = path
	return &m, nil
}

// Record appends a finished stage and saves the manifest.
func (m *Manifest) Record(rec StageRecord) error {
	// Re-running a stage replaces its previous record.
	kept := m.Stages[:0]
	for _, s := range m.Stages {
		if s.Stage != rec.Stage {
			kept = append(kept, s)
		}
	}
	m.Stages = append(kept, rec)
	return m.save()
}

func (m *Manifest) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

// RequireFiles verifies that a stage's inputs exist, naming the stage
// that should have produced them.
func RequireFiles(producedBy string, paths ...string) error {
	for _, p := range paths {
		if !IsFile(p) {
			return fmt.Errorf("%s is missing; run %q first", p, producedBy)
		}
	}
	return nil
}

// RequireDir verifies that a stage's input directory exists.
func RequireDir(producedBy, dir string) error {
	if !IsDirectory(dir) {
		return fmt.Errorf("%s does not exist or is not a directory; run %q first", dir, producedBy)
	}
	return nil
}
