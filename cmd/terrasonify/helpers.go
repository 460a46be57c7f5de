package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marcoaccardi/terrasonify/internal/mask"
	"github.com/marcoaccardi/terrasonify/internal/meta"
	"github.com/marcoaccardi/terrasonify/internal/raster"
)

// manifestDir is the run's output root: the parent of the prepared
// directory, so one manifest covers every stage of the tree.
func manifestDir() string {
	return filepath.Dir(cfg.Dirs.Prepared)
}

func loadManifest() (*meta.Manifest, error) {
	return meta.LoadManifest(manifestDir(), cfg.Dataset)
}

// record finishes a stage: it stamps the record and saves the manifest.
func record(m *meta.Manifest, stage string, started time.Time, inputs, outputs []string) error {
	return m.Record(meta.StageRecord{
		Stage:      stage,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Inputs:     inputs,
		Outputs:    outputs,
	})
}

// gridPath names a raster inside a stage directory.
func gridPath(dir, name string) string {
	return filepath.Join(dir, name+".asc.gz")
}

// readGrid loads a raster written by an earlier stage and tags it with
// the configured projection.
func readGrid(dir, name string) (*raster.Grid, error) {
	g, err := raster.Read(gridPath(dir, name))
	if err != nil {
		return nil, err
	}
	g.EPSG = cfg.Raster.EPSG
	return g, nil
}

func demGrid() (*raster.Grid, error) {
	if err := meta.RequireFiles("prepare", gridPath(cfg.Dirs.Prepared, "dem")); err != nil {
		return nil, err
	}
	return readGrid(cfg.Dirs.Prepared, "dem")
}

// featureNames reads feature_list.json written by the features stage.
func featureNames() ([]string, error) {
	path := filepath.Join(cfg.Dirs.Features, "feature_list.json")
	if err := meta.RequireFiles("features", path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return names, nil
}

// featureGrids loads the named feature rasters from the features
// directory.
func featureGrids(names []string) (map[string]*raster.Grid, error) {
	grids := make(map[string]*raster.Grid, len(names))
	for _, name := range names {
		g, err := readGrid(cfg.Dirs.Features, name)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		grids[name] = g
	}
	return grids, nil
}

// maskMetadata reads mask_metadata.json written by the masks stage.
func maskMetadata() (mask.Metadata, error) {
	var md mask.Metadata
	path := filepath.Join(cfg.Dirs.Masks, "mask_metadata.json")
	if err := meta.RequireFiles("masks", path); err != nil {
		return md, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return md, err
	}
	if err := json.Unmarshal(data, &md); err != nil {
		return md, fmt.Errorf("parse %s: %w", path, err)
	}
	return md, nil
}

// maskGrids loads every mask raster the masks stage wrote.
func maskGrids() ([]string, map[string]*raster.Grid, error) {
	md, err := maskMetadata()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(md.Masks))
	grids := make(map[string]*raster.Grid, len(md.Masks))
	for _, entry := range md.Masks {
		g, err := readGrid(cfg.Dirs.Masks, entry.Name+"_mask")
		if err != nil {
			return nil, nil, fmt.Errorf("mask %q: %w", entry.Name, err)
		}
		names = append(names, entry.Name)
		grids[entry.Name] = g
	}
	return names, grids, nil
}

// maskDefinitions converts the configured masks, falling back to the
// standard ridge/valley/erosion set when the config names none.
func maskDefinitions() []mask.Definition {
	if len(cfg.Masks) == 0 {
		return mask.DefaultDefinitions()
	}
	defs := make([]mask.Definition, len(cfg.Masks))
	for i, m := range cfg.Masks {
		conds := make([]mask.Condition, len(m.Conditions))
		for j, c := range m.Conditions {
			conds[j] = mask.Condition{
				Feature:    c.Feature,
				Compare:    mask.Comparison(c.Compare),
				Percentile: c.Percentile,
				Threshold:  c.Threshold,
			}
		}
		defs[i] = mask.Definition{Name: m.Name, Conditions: conds}
	}
	return defs
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
