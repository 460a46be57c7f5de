package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "left_to_right", cfg.Scan.Direction)
	assert.Equal(t, 500, cfg.Scan.Points)
	assert.Equal(t, []int{3, 4, 5}, cfg.Terrain.EntropyScales)
	assert.Equal(t, 315.0, cfg.Render.Azimuth)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terrasonify.yaml")
	content := `
dataset: test-dem
raster:
  epsg: 25832
  cell_size: 5
scan:
  direction: diagonal
  points: 100
masks:
  - name: ridge
    conditions:
      - feature: tpi
        compare: greater
        percentile: 75
      - feature: curvature
        compare: less
        percentile: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-dem", cfg.Dataset)
	assert.Equal(t, 25832, cfg.Raster.EPSG)
	assert.Equal(t, 5.0, cfg.Raster.CellSize)
	assert.Equal(t, "diagonal", cfg.Scan.Direction)
	assert.Equal(t, 100, cfg.Scan.Points)
	// Untouched sections keep their defaults.
	assert.Equal(t, []int{5, 10}, cfg.Scan.Windows)
	require.Len(t, cfg.Masks, 1)
	assert.Equal(t, 75.0, cfg.Masks[0].Conditions[0].Percentile)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: from-env\n"), 0644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Dataset)

	// A pointed-to file that is missing is an error, not a silent
	// fallback.
	t.Setenv(EnvConfigPath, filepath.Join(dir, "nope.yaml"))
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadMissingDefaultFallsBack(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Dataset, cfg.Dataset)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few points", func(c *Config) { c.Scan.Points = 1 }},
		{"bad direction", func(c *Config) { c.Scan.Direction = "spiral" }},
		{"bad window", func(c *Config) { c.Scan.Windows = []int{0} }},
		{"bad entropy scale", func(c *Config) { c.Terrain.EntropyScales = []int{0} }},
		{"unnamed mask", func(c *Config) { c.Masks = []Mask{{}} }},
		{"mask without conditions", func(c *Config) { c.Masks = []Mask{{Name: "x"}} }},
		{"bad comparison", func(c *Config) {
			c.Masks = []Mask{{Name: "x", Conditions: []MaskCondition{{Feature: "tpi", Compare: "above"}}}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
