// Package sequencer coordinates flow estimation and frame synthesis
// for one interpolation job.
package sequencer

import (
	"context"
	"fmt"

	"github.com/ideamans/go-l10n"

	"github.com/user/optiflow/pkg/imaging"
	"github.com/user/optiflow/pkg/pipeline"
	"github.com/user/optiflow/pkg/ports"
)

// Job describes one interpolation request: two keyframes, the number
// of inbetween frames to synthesize, and the flow parameters.
type Job struct {
	Source     *imaging.Buffer
	Target     *imaging.Buffer
	FrameCount int
	Params     pipeline.FlowParams
}

// Sequencer validates a job, runs estimation once, then synthesis once
// per requested frame. Jobs are independent: the sequencer holds no
// mutable state across Run calls and may serve concurrent jobs.
type Sequencer struct {
	estimate   pipeline.Stage[pipeline.EstimateInput, pipeline.EstimateResult]
	synthesize pipeline.Stage[pipeline.SynthesizeInput, pipeline.SynthesizeResult]
	logger     ports.Logger
	maxPixels  int64
}

// New creates a Sequencer. maxPixels <= 0 disables the size guard.
func New(
	estimate pipeline.Stage[pipeline.EstimateInput, pipeline.EstimateResult],
	synthesize pipeline.Stage[pipeline.SynthesizeInput, pipeline.SynthesizeResult],
	logger ports.Logger,
	maxPixels int64,
) *Sequencer {
	return &Sequencer{
		estimate:   estimate,
		synthesize: synthesize,
		logger:     logger,
		maxPixels:  maxPixels,
	}
}

// Run executes one job and returns the synthesized frames in t-order.
// It is all-or-nothing: on any error no partial sequence is returned.
// Estimation completes fully before the first warp begins.
func (s *Sequencer) Run(ctx context.Context, job Job) ([]*imaging.Buffer, error) {
	if err := s.validate(job); err != nil {
		return nil, err
	}

	s.logger.Info(l10n.F("Interpolating %d frames between %s keyframes", job.FrameCount, job.Source.Shape()))

	est, err := s.estimate.Execute(ctx, pipeline.EstimateInput{
		Source: job.Source,
		Target: job.Target,
		Params: job.Params,
	})
	if err != nil {
		if IsCancelled(err) {
			return nil, err
		}
		return nil, fmt.Errorf("estimate stage: %w", err)
	}

	mx, my := est.Forward.Mean()
	s.logger.Debug("Estimated flow: mean displacement (%.2f, %.2f) px", mx, my)

	syn, err := s.synthesize.Execute(ctx, pipeline.SynthesizeInput{
		Source:     job.Source,
		Target:     job.Target,
		Forward:    est.Forward,
		Backward:   est.Backward,
		FrameCount: job.FrameCount,
	})
	if err != nil {
		if IsCancelled(err) {
			return nil, err
		}
		return nil, fmt.Errorf("synthesize stage: %w", err)
	}

	s.logger.Info(l10n.F("Synthesized %d frames", len(syn.Frames)))
	return syn.Frames, nil
}

// validate rejects malformed jobs before any numeric work, naming the
// violated constraint.
func (s *Sequencer) validate(job Job) error {
	if job.Source == nil {
		return &ConfigError{Field: "source", Reason: "missing keyframe"}
	}
	if job.Target == nil {
		return &ConfigError{Field: "target", Reason: "missing keyframe"}
	}
	if !job.Source.SameShape(job.Target) {
		return &ConfigError{
			Field:  "target",
			Reason: fmt.Sprintf("dimensions %s do not match source %s", job.Target.Shape(), job.Source.Shape()),
		}
	}
	if job.Source.Width < 1 || job.Source.Height < 1 {
		return &ConfigError{Field: "source", Reason: "empty image"}
	}
	if job.FrameCount < 1 {
		return &ConfigError{Field: "frame_count", Reason: fmt.Sprintf("must be >= 1, got %d", job.FrameCount)}
	}
	if job.Params.PyramidLevels < 0 {
		return &ConfigError{Field: "pyramid_levels", Reason: fmt.Sprintf("must be >= 0, got %d", job.Params.PyramidLevels)}
	}
	if job.Params.Iterations < 1 {
		return &ConfigError{Field: "iterations", Reason: fmt.Sprintf("must be >= 1, got %d", job.Params.Iterations)}
	}
	if job.Params.WindowRadius < 1 {
		return &ConfigError{Field: "window_radius", Reason: fmt.Sprintf("must be >= 1, got %d", job.Params.WindowRadius)}
	}
	if job.Params.Damping <= 0 {
		return &ConfigError{Field: "damping", Reason: "must be > 0"}
	}
	if job.Params.Epsilon < 0 {
		return &ConfigError{Field: "epsilon", Reason: "must be >= 0"}
	}

	if s.maxPixels > 0 {
		pixels := int64(job.Source.Width) * int64(job.Source.Height)
		if pixels > s.maxPixels {
			return &TooLargeError{Pixels: pixels, Limit: s.maxPixels}
		}
	}
	return nil
}
