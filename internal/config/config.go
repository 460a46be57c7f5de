// Package config holds the pipeline configuration loaded from a YAML
// file. One config drives every stage so runs are reproducible from a
// single document.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/marcoaccardi/terrasonify/internal/scan"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "TERRASONIFY_CONFIG"

// DefaultPath is used when neither the flag nor the environment names a
// config file.
const DefaultPath = "terrasonify.yaml"

// Config is the full pipeline configuration.
type Config struct {
	// Dataset identifies the DEM being processed; it names output
	// subdirectories and metadata entries.
	Dataset string `yaml:"dataset"`

	Dirs    Dirs    `yaml:"dirs"`
	Raster  Raster  `yaml:"raster"`
	Terrain Terrain `yaml:"terrain"`
	Masks   []Mask  `yaml:"masks"`
	Zonal   Zonal   `yaml:"zonal"`
	Scan    Scan    `yaml:"scan"`
	Render  Render  `yaml:"render"`
	Tiles   Tiles   `yaml:"tiles"`
}

// Dirs lays out the stage output tree.
type Dirs struct {
	Input    string `yaml:"input"`
	Prepared string `yaml:"prepared"`
	Features string `yaml:"features"`
	Masks    string `yaml:"masks"`
	Zonal    string `yaml:"zonal"`
	Vectors  string `yaml:"vectors"`
	Series   string `yaml:"series"`
	Renders  string `yaml:"renders"`
	Tiles    string `yaml:"tiles"`
}

// Raster configures the prepare stage.
type Raster struct {
	EPSG int `yaml:"epsg"`
	// CellSize > 0 resamples the input to this resolution.
	CellSize float64 `yaml:"cell_size"`
	// NetCDFVar names the elevation variable in NetCDF inputs; empty
	// tries the common names.
	NetCDFVar string `yaml:"netcdf_var"`
}

// Terrain configures feature derivation.
type Terrain struct {
	ZFactor       float64 `yaml:"z_factor"`
	EntropyScales []int   `yaml:"entropy_scales"`
}

// Mask configures one zone mask.
type Mask struct {
	Name       string          `yaml:"name"`
	Conditions []MaskCondition `yaml:"conditions"`
}

// MaskCondition is one threshold of a mask.
type MaskCondition struct {
	Feature    string   `yaml:"feature"`
	Compare    string   `yaml:"compare"` // greater, less, equal
	Percentile float64  `yaml:"percentile"`
	Threshold  *float64 `yaml:"threshold"` // absolute override
}

// Zonal selects the statistics written by the zonal stage.
type Zonal struct {
	Statistics []string `yaml:"statistics"`
}

// Scan configures path extraction.
type Scan struct {
	Direction string `yaml:"direction"`
	Points    int    `yaml:"points"`
	Windows   []int  `yaml:"moving_average_windows"`
}

// Render configures the PNG stage.
type Render struct {
	ZFactor    float64 `yaml:"z_factor"`
	Azimuth    float64 `yaml:"azimuth"`
	Altitude   float64 `yaml:"altitude"`
	ColorTable string  `yaml:"color_table"` // optional gdaldem-style file
}

// Tiles configures the vector tile stage.
type Tiles struct {
	MaxZoom  *uint8             `yaml:"max_zoom"` // nil derives it from the grid
	Settings []TileLayerSetting `yaml:"layers"`
}

// TileLayerSetting bounds one layer's zoom range.
type TileLayerSetting struct {
	Layer   string  `yaml:"layer"`
	MinZoom *uint16 `yaml:"minzoom"`
	MaxZoom *uint16 `yaml:"maxzoom"`
}

// Default returns the configuration the pipeline runs with when no file
// is given.
func Default() Config {
	return Config{
		Dataset: "dem",
		Dirs: Dirs{
			Input:    "data/input",
			Prepared: "data/prepared",
			Features: "data/features",
			Masks:    "data/masks",
			Zonal:    "data/zonal",
			Vectors:  "data/vectors",
			Series:   "data/series",
			Renders:  "data/renders",
			Tiles:    "data/tiles",
		},
		Raster:  Raster{EPSG: 32616},
		Terrain: Terrain{ZFactor: 1, EntropyScales: []int{3, 4, 5}},
		Zonal:   Zonal{Statistics: []string{"mean", "stddev", "min", "max", "range"}},
		Scan: Scan{
			Direction: string(scan.LeftToRight),
			Points:    500,
			Windows:   []int{5, 10},
		},
		Render: Render{ZFactor: 1, Azimuth: 315, Altitude: 45},
	}
}

// Load reads path, or the environment override, or falls back to
// defaults when no file exists at the default path.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfigPath); env != "" {
			path = env
			explicit = true
		} else {
			path = DefaultPath
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no stage could run with.
func (c Config) Validate() error {
	if c.Scan.Points < 2 {
		return fmt.Errorf("scan.points must be at least 2, got %d", c.Scan.Points)
	}
	switch scan.Direction(c.Scan.Direction) {
	case scan.LeftToRight, scan.TopToBottom, scan.Diagonal:
	default:
		return fmt.Errorf("unknown scan.direction %q", c.Scan.Direction)
	}
	for _, w := range c.Scan.Windows {
		if w < 1 {
			return fmt.Errorf("moving average window must be positive, got %d", w)
		}
	}
	for _, scale := range c.Terrain.EntropyScales {
		if scale < 1 {
			return fmt.Errorf("entropy scale must be positive, got %d", scale)
		}
	}
	for _, m := range c.Masks {
		if m.Name == "" {
			return fmt.Errorf("mask without a name")
		}
		if len(m.Conditions) == 0 {
			return fmt.Errorf("mask %q has no conditions", m.Name)
		}
		for _, cond := range m.Conditions {
			switch cond.Compare {
			case "greater", "less", "equal":
			default:
				return fmt.Errorf("mask %q: unknown comparison %q", m.Name, cond.Compare)
			}
		}
	}
	return nil
}
