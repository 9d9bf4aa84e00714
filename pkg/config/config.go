// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/user/optiflow/pkg/pipeline"
)

// Config represents the full engine configuration. Values load from
// YAML and may be overridden by OPTIFLOW_* environment variables.
type Config struct {
	// Execution
	Workers      int   `yaml:"workers"`
	MaxPixels    int64 `yaml:"max_pixels"`    // per-keyframe pixel budget (0 = unlimited)
	MaxDimension int   `yaml:"max_dimension"` // shrink larger keyframes before estimation (0 = off)

	// Flow estimation
	Flow FlowConfig `yaml:"flow"`

	// Export
	Output OutputConfig `yaml:"output"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"` // enables rotating JSON file logs when set

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// FlowConfig holds the estimator parameters.
type FlowConfig struct {
	PyramidLevels int     `yaml:"pyramid_levels"`
	Iterations    int     `yaml:"iterations"`
	WindowRadius  int     `yaml:"window_radius"`
	Damping       float64 `yaml:"damping"`
	Epsilon       float64 `yaml:"epsilon"`
	Symmetric     bool    `yaml:"symmetric"`
}

// OutputConfig holds frame export settings.
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"` // fmt pattern taking the 1-based frame index
	Format  string `yaml:"format"`  // png or jpg
	Quality int    `yaml:"quality"` // JPEG quality 1-100
}

// Defaults returns a Config with default values. Flow defaults match
// pipeline.DefaultFlowParams.
func Defaults() Config {
	p := pipeline.DefaultFlowParams()
	return Config{
		Workers:      0, // 0 = NumCPU
		MaxPixels:    64 * 1024 * 1024,
		MaxDimension: 0,

		Flow: FlowConfig{
			PyramidLevels: p.PyramidLevels,
			Iterations:    p.Iterations,
			WindowRadius:  p.WindowRadius,
			Damping:       p.Damping,
			Epsilon:       p.Epsilon,
			Symmetric:     p.Symmetric,
		},

		Output: OutputConfig{
			Dir:     ".",
			Pattern: "frame-%04d",
			Format:  "png",
			Quality: 90,
		},

		LogLevel: "info",
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the
// defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides configuration fields from OPTIFLOW_* environment
// variables (e.g. OPTIFLOW_WORKERS, OPTIFLOW_FLOW_ITERATIONS).
func ApplyEnv(cfg *Config) error {
	return envconfig.ProcessWithOptions("optiflow", cfg, envconfig.Options{SplitWords: true})
}

// ToParams converts the flow section into estimator parameters.
func (f FlowConfig) ToParams() pipeline.FlowParams {
	return pipeline.FlowParams{
		PyramidLevels: f.PyramidLevels,
		Iterations:    f.Iterations,
		WindowRadius:  f.WindowRadius,
		Damping:       f.Damping,
		Epsilon:       f.Epsilon,
		Symmetric:     f.Symmetric,
	}
}
