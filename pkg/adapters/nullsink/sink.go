// Package nullsink provides a no-op debug sink.
package nullsink

import (
	"image"

	"github.com/user/optiflow/pkg/flow"
	"github.com/user/optiflow/pkg/ports"
)

// Sink discards all debug output.
type Sink struct{}

// New creates a new null sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false, letting callers skip artifact generation.
func (s *Sink) Enabled() bool { return false }

// SaveJobJSON does nothing.
func (s *Sink) SaveJobJSON(data []byte) error { return nil }

// SaveFlowField does nothing.
func (s *Sink) SaveFlowField(name string, field *flow.Field) error { return nil }

// SavePyramidLevel does nothing.
func (s *Sink) SavePyramidLevel(level int, img image.Image) error { return nil }

// SaveFrame does nothing.
func (s *Sink) SaveFrame(index int, img image.Image) error { return nil }

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
