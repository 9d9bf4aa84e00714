// Package orchestrator coordinates keyframe decoding, interpolation
// and frame export for one job.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ideamans/go-l10n"

	"github.com/user/optiflow/pkg/imaging"
	"github.com/user/optiflow/pkg/pipeline"
	"github.com/user/optiflow/pkg/ports"
	"github.com/user/optiflow/pkg/sequencer"
)

// Config contains all configuration for one orchestrated job.
type Config struct {
	// Input
	SourcePath string
	TargetPath string

	// Interpolation
	FrameCount int
	Params     pipeline.FlowParams

	// Preprocessing
	MaxDimension int // shrink larger keyframes before estimation (0 = off)

	// Export
	OutputDir string
	Pattern   string // fmt pattern taking the 1-based frame index, e.g. "frame-%04d"
	Format    ports.ImageFormat
	Quality   int
}

// Orchestrator runs the decode -> interpolate -> export pipeline.
type Orchestrator struct {
	seq    *sequencer.Sequencer
	fs     ports.FileSystem
	codec  ports.ImageCodec
	sink   ports.DebugSink
	logger ports.Logger
}

// New creates a new Orchestrator.
func New(seq *sequencer.Sequencer, fs ports.FileSystem, codec ports.ImageCodec, sink ports.DebugSink, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		seq:    seq,
		fs:     fs,
		codec:  codec,
		sink:   sink,
		logger: logger,
	}
}

// RunResult summarizes a completed job.
type RunResult struct {
	FramesWritten int
	OutputDir     string
	Width         int
	Height        int
}

// Run executes the complete pipeline for one keyframe pair.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (RunResult, error) {
	o.logger.Info(l10n.F("Loading keyframes %s and %s", cfg.SourcePath, cfg.TargetPath))

	source, err := o.loadKeyframe(cfg.SourcePath, cfg.MaxDimension)
	if err != nil {
		return RunResult{}, fmt.Errorf("load source keyframe: %w", err)
	}
	target, err := o.loadKeyframe(cfg.TargetPath, cfg.MaxDimension)
	if err != nil {
		return RunResult{}, fmt.Errorf("load target keyframe: %w", err)
	}

	if o.sink.Enabled() {
		job := map[string]interface{}{
			"source":      cfg.SourcePath,
			"target":      cfg.TargetPath,
			"frame_count": cfg.FrameCount,
			"shape":       source.Shape(),
			"params":      cfg.Params,
		}
		if data, err := json.MarshalIndent(job, "", "  "); err == nil {
			o.sink.SaveJobJSON(data)
		}
	}

	frames, err := o.seq.Run(ctx, sequencer.Job{
		Source:     source,
		Target:     target,
		FrameCount: cfg.FrameCount,
		Params:     cfg.Params,
	})
	if err != nil {
		if sequencer.IsCancelled(err) {
			o.logger.Warn(l10n.T("Job cancelled"))
			return RunResult{}, err
		}
		o.logger.Error(l10n.F("Interpolation failed: %s", err))
		return RunResult{}, err
	}

	if err := o.fs.MkdirAll(cfg.OutputDir); err != nil {
		return RunResult{}, fmt.Errorf("create output directory: %w", err)
	}

	pattern := cfg.Pattern
	if pattern == "" {
		pattern = "frame-%04d"
	}

	for i, frame := range frames {
		data, err := o.codec.Encode(frame.ToImage(), cfg.Format, cfg.Quality)
		if err != nil {
			return RunResult{}, fmt.Errorf("encode frame %d: %w", i, err)
		}
		name := fmt.Sprintf(pattern+".%s", i+1, cfg.Format)
		if err := o.fs.WriteFile(filepath.Join(cfg.OutputDir, name), data); err != nil {
			return RunResult{}, fmt.Errorf("write frame %d: %w", i, err)
		}
	}

	o.logger.Info(l10n.F("Wrote %d frames to %s", len(frames), cfg.OutputDir))

	return RunResult{
		FramesWritten: len(frames),
		OutputDir:     cfg.OutputDir,
		Width:         source.Width,
		Height:        source.Height,
	}, nil
}

// loadKeyframe reads and decodes one keyframe, shrinking it when it
// exceeds the configured dimension limit.
func (o *Orchestrator) loadKeyframe(path string, maxDim int) (*imaging.Buffer, error) {
	data, err := o.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := o.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	buf := imaging.FromImage(img)
	fitted := imaging.FitWithin(buf, maxDim)
	if fitted != buf {
		o.logger.Warn(l10n.F("Keyframe %s resized from %s to %s", path, buf.Shape(), fitted.Shape()))
	}
	return fitted, nil
}
