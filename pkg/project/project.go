// Package project reads and writes animation project files: a YAML
// description of keyframe image paths, per-pair inbetween counts and
// flow overrides, and export settings. The engine itself never touches
// this format; the CLI resolves it into jobs.
package project

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/optiflow/pkg/config"
)

// Project describes one animation interpolation project.
type Project struct {
	Name   string              `yaml:"name"`
	Output config.OutputConfig `yaml:"output"`
	Pairs  []Pair              `yaml:"pairs"`
}

// Pair names two keyframe image files and how many inbetween frames to
// synthesize between them. Flow, when present, overrides the engine
// defaults for this pair only.
type Pair struct {
	Source string             `yaml:"source"`
	Target string             `yaml:"target"`
	Frames int                `yaml:"frames"`
	Flow   *config.FlowConfig `yaml:"flow,omitempty"`
}

// Load reads and validates a project file.
func Load(path string) (Project, error) {
	var p Project

	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse project: %w", err)
	}

	if p.Output.Pattern == "" {
		p.Output.Pattern = "frame-%04d"
	}
	if p.Output.Format == "" {
		p.Output.Format = "png"
	}
	if p.Output.Quality == 0 {
		p.Output.Quality = 90
	}
	if p.Output.Dir == "" {
		p.Output.Dir = "."
	}

	return p, p.Validate()
}

// Save writes the project file.
func Save(path string, p Project) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks structural constraints that can be verified without
// decoding any images.
func (p Project) Validate() error {
	if len(p.Pairs) == 0 {
		return fmt.Errorf("project has no keyframe pairs")
	}
	for i, pair := range p.Pairs {
		if pair.Source == "" {
			return fmt.Errorf("pair %d: missing source path", i)
		}
		if pair.Target == "" {
			return fmt.Errorf("pair %d: missing target path", i)
		}
		if pair.Frames < 1 {
			return fmt.Errorf("pair %d: frames must be >= 1, got %d", i, pair.Frames)
		}
	}
	return nil
}
