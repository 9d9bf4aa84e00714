package sequencer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/user/optiflow/pkg/flow"
	"github.com/user/optiflow/pkg/imaging"
	"github.com/user/optiflow/pkg/mocks"
	"github.com/user/optiflow/pkg/pipeline"
)

// countingStages builds stub stages that count invocations and return
// canned results, so validation ordering can be observed.
type countingStages struct {
	estimateCalls   int
	synthesizeCalls int
	estimateErr     error
	synthesizeErr   error
}

func (c *countingStages) estimate() pipeline.Stage[pipeline.EstimateInput, pipeline.EstimateResult] {
	return pipeline.StageFunc[pipeline.EstimateInput, pipeline.EstimateResult](
		func(ctx context.Context, input pipeline.EstimateInput) (pipeline.EstimateResult, error) {
			c.estimateCalls++
			if c.estimateErr != nil {
				return pipeline.EstimateResult{}, c.estimateErr
			}
			return pipeline.EstimateResult{
				Forward: flow.NewField(input.Source.Width, input.Source.Height),
			}, nil
		})
}

func (c *countingStages) synthesize() pipeline.Stage[pipeline.SynthesizeInput, pipeline.SynthesizeResult] {
	return pipeline.StageFunc[pipeline.SynthesizeInput, pipeline.SynthesizeResult](
		func(ctx context.Context, input pipeline.SynthesizeInput) (pipeline.SynthesizeResult, error) {
			c.synthesizeCalls++
			if c.synthesizeErr != nil {
				return pipeline.SynthesizeResult{}, c.synthesizeErr
			}
			frames := make([]*imaging.Buffer, input.FrameCount)
			for i := range frames {
				frames[i] = imaging.NewBuffer(input.Source.Width, input.Source.Height, input.Source.Channels, input.Source.Depth)
			}
			return pipeline.SynthesizeResult{Frames: frames}, nil
		})
}

func validJob() Job {
	return Job{
		Source:     imaging.NewBuffer(16, 16, 1, imaging.DepthFloat),
		Target:     imaging.NewBuffer(16, 16, 1, imaging.DepthFloat),
		FrameCount: 3,
		Params:     pipeline.DefaultFlowParams(),
	}
}

func TestRun_HappyPath(t *testing.T) {
	stages := &countingStages{}
	seq := New(stages.estimate(), stages.synthesize(), mocks.NewLogger(), 0)

	frames, err := seq.Run(context.Background(), validJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if stages.estimateCalls != 1 {
		t.Errorf("expected 1 estimate call, got %d", stages.estimateCalls)
	}
	if stages.synthesizeCalls != 1 {
		t.Errorf("expected 1 synthesize call, got %d", stages.synthesizeCalls)
	}
}

func TestRun_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Job)
		field  string
	}{
		{"nil source", func(j *Job) { j.Source = nil }, "source"},
		{"nil target", func(j *Job) { j.Target = nil }, "target"},
		{"dimension mismatch", func(j *Job) { j.Target = imaging.NewBuffer(8, 16, 1, imaging.DepthFloat) }, "target"},
		{"channel mismatch", func(j *Job) { j.Target = imaging.NewBuffer(16, 16, 3, imaging.DepthFloat) }, "target"},
		{"zero frames", func(j *Job) { j.FrameCount = 0 }, "frame_count"},
		{"negative frames", func(j *Job) { j.FrameCount = -2 }, "frame_count"},
		{"negative levels", func(j *Job) { j.Params.PyramidLevels = -1 }, "pyramid_levels"},
		{"zero iterations", func(j *Job) { j.Params.Iterations = 0 }, "iterations"},
		{"zero window", func(j *Job) { j.Params.WindowRadius = 0 }, "window_radius"},
		{"zero damping", func(j *Job) { j.Params.Damping = 0 }, "damping"},
		{"negative epsilon", func(j *Job) { j.Params.Epsilon = -1 }, "epsilon"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stages := &countingStages{}
			seq := New(stages.estimate(), stages.synthesize(), mocks.NewLogger(), 0)

			job := validJob()
			tc.modify(&job)

			_, err := seq.Run(context.Background(), job)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !IsConfigError(err) {
				t.Fatalf("expected ConfigError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error should name field %q: %v", tc.field, err)
			}
			if stages.estimateCalls != 0 {
				t.Error("validation failures must not reach the estimator")
			}
		})
	}
}

func TestRun_PixelBudget(t *testing.T) {
	stages := &countingStages{}
	seq := New(stages.estimate(), stages.synthesize(), mocks.NewLogger(), 100)

	_, err := seq.Run(context.Background(), validJob())
	if err == nil {
		t.Fatal("expected an error for oversized keyframes")
	}
	var tle *TooLargeError
	if !errors.As(err, &tle) {
		t.Fatalf("expected TooLargeError, got %T: %v", err, err)
	}
	if tle.Pixels != 256 || tle.Limit != 100 {
		t.Errorf("expected 256 pixels over limit 100, got %d/%d", tle.Pixels, tle.Limit)
	}
	if stages.estimateCalls != 0 {
		t.Error("oversized jobs must not reach the estimator")
	}
}

func TestRun_EstimateFailureWrapped(t *testing.T) {
	stages := &countingStages{estimateErr: fmt.Errorf("boom")}
	seq := New(stages.estimate(), stages.synthesize(), mocks.NewLogger(), 0)

	_, err := seq.Run(context.Background(), validJob())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "estimate stage") {
		t.Errorf("error should identify the failing stage: %v", err)
	}
	if stages.synthesizeCalls != 0 {
		t.Error("synthesis must not run after estimation fails")
	}
}

func TestRun_CancellationPassedThrough(t *testing.T) {
	stages := &countingStages{
		estimateErr: fmt.Errorf("flow estimation cancelled: %w", context.Canceled),
	}
	seq := New(stages.estimate(), stages.synthesize(), mocks.NewLogger(), 0)

	_, err := seq.Run(context.Background(), validJob())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsCancelled(err) {
		t.Errorf("cancellation must stay recognizable after Run: %v", err)
	}
	if IsConfigError(err) {
		t.Error("cancellation must not look like a configuration error")
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(context.Canceled) {
		t.Error("context.Canceled must count as cancelled")
	}
	if !IsCancelled(fmt.Errorf("wrap: %w", context.DeadlineExceeded)) {
		t.Error("wrapped DeadlineExceeded must count as cancelled")
	}
	if IsCancelled(fmt.Errorf("ordinary failure")) {
		t.Error("ordinary errors must not count as cancelled")
	}
}
