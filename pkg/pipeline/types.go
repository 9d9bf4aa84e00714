package pipeline

import (
	"github.com/user/optiflow/pkg/flow"
	"github.com/user/optiflow/pkg/imaging"
)

// =============================================================================
// Flow Parameters
// =============================================================================

// FlowParams configures the flow estimator for one job.
type FlowParams struct {
	PyramidLevels int     // Pyramid level count (0 = auto, coarsest side >= 16 px)
	Iterations    int     // Refinement iterations per level (default: 10)
	WindowRadius  int     // Least-squares window radius (default: 6, i.e. 13x13)
	Damping       float64 // Regularization added to the normal matrix diagonal
	Epsilon       float64 // Mean update magnitude below which a level converged
	Symmetric     bool    // Also estimate the reverse field for backward warping
}

// DefaultFlowParams returns FlowParams with default values.
func DefaultFlowParams() FlowParams {
	return FlowParams{
		PyramidLevels: 0,
		Iterations:    10,
		WindowRadius:  6,
		Damping:       1e-4,
		Epsilon:       1e-3,
		Symmetric:     false,
	}
}

// =============================================================================
// Estimate Stage Types
// =============================================================================

// EstimateInput contains the keyframe pair and parameters for flow
// estimation. Source and Target must share dimensions and channels.
type EstimateInput struct {
	Source *imaging.Buffer
	Target *imaging.Buffer
	Params FlowParams
}

// EstimateResult contains the estimated displacement field(s).
// Backward is nil unless Params.Symmetric was set.
type EstimateResult struct {
	Forward  *flow.Field
	Backward *flow.Field
	Stats    flow.Stats
}

// =============================================================================
// Synthesize Stage Types
// =============================================================================

// SynthesizeInput contains everything needed to synthesize the
// intermediate frames of one job.
type SynthesizeInput struct {
	Source     *imaging.Buffer
	Target     *imaging.Buffer
	Forward    *flow.Field
	Backward   *flow.Field // optional reverse field; nil means -Forward
	FrameCount int
}

// SynthesizeResult contains the synthesized frames in t-order:
// index i corresponds to t = (i+1)/(N+1).
type SynthesizeResult struct {
	Frames []*imaging.Buffer
}
