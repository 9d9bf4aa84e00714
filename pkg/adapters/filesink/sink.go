// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/optiflow/pkg/adapters/flowviz"
	"github.com/user/optiflow/pkg/flow"
	"github.com/user/optiflow/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
	codec   ports.ImageCodec
}

// New creates a new file sink rooted at baseDir.
func New(baseDir string, fs ports.FileSystem, codec ports.ImageCodec) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
		codec:   codec,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveJobJSON saves the resolved job parameters.
func (s *Sink) SaveJobJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "job.json"), data)
}

// SaveFlowField renders the field as an arrow plot and saves it.
func (s *Sink) SaveFlowField(name string, field *flow.Field) error {
	img := flowviz.Render(field, flowviz.DefaultOptions())
	data, err := s.codec.Encode(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode flow field: %w", err)
	}
	path := filepath.Join(s.baseDir, fmt.Sprintf("flow-%s.png", name))
	return s.fs.WriteFile(path, data)
}

// SavePyramidLevel saves one level of the estimation pyramid.
func (s *Sink) SavePyramidLevel(level int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "pyramid")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.codec.Encode(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode pyramid level: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("level-%02d.png", level))
	return s.fs.WriteFile(path, data)
}

// SaveFrame saves a synthesized intermediate frame.
func (s *Sink) SaveFrame(index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.codec.Encode(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
