package ports

import (
	"image"

	"github.com/user/optiflow/pkg/flow"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate estimation and synthesis artifacts
// for inspection without coupling the engine to the filesystem.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveJobJSON saves the resolved job parameters as JSON.
	SaveJobJSON(data []byte) error

	// SaveFlowField saves a visualization of a displacement field.
	// The name distinguishes the forward and backward fields.
	SaveFlowField(name string, field *flow.Field) error

	// SavePyramidLevel saves one level of the estimation pyramid.
	SavePyramidLevel(level int, img image.Image) error

	// SaveFrame saves a synthesized intermediate frame.
	SaveFrame(index int, img image.Image) error
}
