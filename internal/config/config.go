// Package config handles arbor configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Config holds every setting of the arbor command.
type Config struct {
	Mesher    MesherConfig    `yaml:"mesher" envPrefix:"MESHER_"`
	Smoothing SmoothingConfig `yaml:"smoothing" envPrefix:"SMOOTHING_"`
	Export    ExportConfig    `yaml:"export" envPrefix:"EXPORT_"`
	Preview   PreviewConfig   `yaml:"preview" envPrefix:"PREVIEW_"`
	Recipe    RecipeConfig    `yaml:"recipe" envPrefix:"RECIPE_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOG_"`
}

// MesherConfig holds the manifold mesher settings.
type MesherConfig struct {
	RadialResolution int     `yaml:"radial_resolution" env:"RADIAL_RESOLUTION"`
	CapEnds          bool    `yaml:"cap_ends" env:"CAP_ENDS"`
	MaxBranchRatio   float64 `yaml:"max_branch_ratio" env:"MAX_BRANCH_RATIO"`
}

// SmoothingConfig holds the post-mesh Laplacian smoothing settings.
type SmoothingConfig struct {
	Iterations int     `yaml:"iterations" env:"ITERATIONS"`
	Factor     float64 `yaml:"factor" env:"FACTOR"`
	// Attribute names the per-vertex weight; empty smooths uniformly.
	Attribute string `yaml:"attribute" env:"ATTRIBUTE"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Format string `yaml:"format" env:"FORMAT"` // obj or stl
	Output string `yaml:"output" env:"OUTPUT"`
}

// PreviewConfig holds the implicit preview mesher settings.
type PreviewConfig struct {
	Cells     int     `yaml:"cells" env:"CELLS"`
	Blend     float64 `yaml:"blend" env:"BLEND"`
	MinRadius float64 `yaml:"min_radius" env:"MIN_RADIUS"`
}

// RecipeConfig holds recipe evaluation settings.
type RecipeConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"LEVEL"`
	LogFile string `yaml:"log_file" env:"FILE"`
	JSON    bool   `yaml:"json" env:"JSON"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesher: MesherConfig{
			RadialResolution: 8,
			CapEnds:          false,
			MaxBranchRatio:   .95,
		},
		Smoothing: SmoothingConfig{
			Iterations: 2,
			Factor:     .5,
			Attribute:  "smooth_amount",
		},
		Export: ExportConfig{
			Format: "obj",
			Output: "tree.obj",
		},
		Preview: PreviewConfig{
			Cells:     120,
			Blend:     0,
			MinRadius: .02,
		},
		Recipe: RecipeConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting outside its accepted range. Mesher
// limits are checked by the mesher itself.
func (c *Config) Validate() error {
	switch c.Export.Format {
	case "obj", "stl":
	default:
		return fmt.Errorf("export.format: unknown format %q, want obj or stl", c.Export.Format)
	}
	if c.Smoothing.Iterations < 0 {
		return fmt.Errorf("smoothing.iterations: %d is negative", c.Smoothing.Iterations)
	}
	if c.Smoothing.Factor < 0 || c.Smoothing.Factor > 1 {
		return fmt.Errorf("smoothing.factor: %g is outside [0, 1]", c.Smoothing.Factor)
	}
	if c.Preview.Cells < 8 {
		return fmt.Errorf("preview.cells: %d is below 8", c.Preview.Cells)
	}
	if c.Recipe.Timeout <= 0 {
		return fmt.Errorf("recipe.timeout: %s is not positive", c.Recipe.Timeout)
	}
	return nil
}
