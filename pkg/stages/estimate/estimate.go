// Package estimate implements the optical flow estimation stage.
//
// The estimator is a coarse-to-fine pyramidal Lucas-Kanade variant:
// at each pyramid level the current displacement field warps the
// target toward the source, and a damped 2x2 least-squares system per
// pixel (windowed gradient sums via summed-area tables) produces an
// incremental update. The damping keeps textureless regions from
// producing near-singular systems.
package estimate

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/user/optiflow/pkg/flow"
	"github.com/user/optiflow/pkg/imaging"
	"github.com/user/optiflow/pkg/pipeline"
	"github.com/user/optiflow/pkg/ports"
)

// Stage estimates a dense displacement field between two keyframes.
type Stage struct {
	sink    ports.DebugSink
	logger  ports.Logger
	workers int
}

// NewStage creates a new estimate stage.
func NewStage(sink ports.DebugSink, logger ports.Logger, workers int) *Stage {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Stage{
		sink:    sink,
		logger:  logger.WithComponent("estimate"),
		workers: workers,
	}
}

// Execute estimates the forward field source->target and, when
// Params.Symmetric is set, the backward field target->source.
// Estimation never fails on non-convergence; it returns its best
// field after the iteration budget.
func (s *Stage) Execute(ctx context.Context, input pipeline.EstimateInput) (pipeline.EstimateResult, error) {
	result := pipeline.EstimateResult{}

	srcLum := input.Source.Luminance()
	dstLum := input.Target.Luminance()

	levels := input.Params.PyramidLevels
	if levels <= 0 {
		levels = flow.AutoLevels(srcLum.Width, srcLum.Height)
	}
	srcPyr := flow.BuildPyramid(srcLum, levels)
	dstPyr := flow.BuildPyramid(dstLum, levels)

	s.logger.Debug("Estimating flow over %d pyramid levels (%s)", len(srcPyr), input.Source.Shape())

	if s.sink.Enabled() {
		for l, lvl := range srcPyr {
			s.sink.SavePyramidLevel(l, lvl.ToImage())
		}
	}

	forward, stats, err := s.estimatePyramidal(ctx, srcPyr, dstPyr, input.Params)
	if err != nil {
		return result, err
	}
	forward.ClampToBounds()
	result.Forward = forward
	result.Stats = stats

	if input.Params.Symmetric {
		s.logger.Debug("Estimating reverse flow for symmetric warping")
		backward, _, err := s.estimatePyramidal(ctx, dstPyr, srcPyr, input.Params)
		if err != nil {
			return result, err
		}
		backward.ClampToBounds()
		result.Backward = backward
	}

	if s.sink.Enabled() {
		s.sink.SaveFlowField("forward", result.Forward)
		if result.Backward != nil {
			s.sink.SaveFlowField("backward", result.Backward)
		}
	}

	return result, nil
}

// estimatePyramidal refines the field from the coarsest level down to
// full resolution. A level ends when an update stops paying: if the
// brightness residual rises, the overshooting update is rolled back
// and the level stops, so the recorded residual trace never increases.
// Cancellation is observed at iteration boundaries.
func (s *Stage) estimatePyramidal(ctx context.Context, srcPyr, dstPyr []*imaging.Buffer, params pipeline.FlowParams) (*flow.Field, flow.Stats, error) {
	stats := flow.Stats{Levels: len(srcPyr)}

	var field *flow.Field
	for l := len(srcPyr) - 1; l >= 0; l-- {
		src := srcPyr[l]
		dst := dstPyr[l]

		if field == nil {
			field = flow.NewField(src.Width, src.Height)
		} else {
			field = field.Upsample(src.Width, src.Height)
		}

		scratch := newScratch(src.Width, src.Height)
		ran := 0
		prevResidual := math.Inf(1)
		for it := 0; it < params.Iterations; it++ {
			if err := ctx.Err(); err != nil {
				return nil, stats, fmt.Errorf("flow estimation cancelled: %w", err)
			}

			residual := s.warpResidual(src, dst, field, scratch)
			if residual > prevResidual {
				copy(field.DX, scratch.prevDX)
				copy(field.DY, scratch.prevDY)
				break
			}
			if l == 0 {
				stats.Residuals = append(stats.Residuals, residual)
			}
			prevResidual = residual

			copy(scratch.prevDX, field.DX)
			copy(scratch.prevDY, field.DY)
			meanDelta := s.applyUpdate(field, params, scratch)
			ran++
			if meanDelta < params.Epsilon {
				break
			}
		}
		stats.Iterations = append(stats.Iterations, ran)
		s.logger.Debug("Level %d (%dx%d): %d iterations", l, src.Width, src.Height, ran)
	}

	return field, stats, nil
}

// scratch holds per-level working planes so iterations do not
// reallocate them. prevDX/prevDY back up the field before each update
// so an overshooting final update can be rolled back.
type scratch struct {
	width, height int
	warped        *imaging.Buffer
	dt            []float32
	prevDX        []float32
	prevDY        []float32
	satXX         []float64
	satXY         []float64
	satYY         []float64
	satXT         []float64
	satYT         []float64
	rowDelta      []float64
}

func newScratch(w, h int) *scratch {
	n := (w + 1) * (h + 1)
	return &scratch{
		width:    w,
		height:   h,
		warped:   imaging.NewBuffer(w, h, 1, imaging.DepthFloat),
		dt:       make([]float32, w*h),
		prevDX:   make([]float32, w*h),
		prevDY:   make([]float32, w*h),
		satXX:    make([]float64, n),
		satXY:    make([]float64, n),
		satYY:    make([]float64, n),
		satXT:    make([]float64, n),
		satYT:    make([]float64, n),
		rowDelta: make([]float64, h),
	}
}

// warpResidual warps the target by the current field and returns the
// mean squared brightness residual against the source. The warped
// plane and residual image stay in the scratch for applyUpdate.
func (s *Stage) warpResidual(src, dst *imaging.Buffer, field *flow.Field, sc *scratch) float64 {
	w, h := src.Width, src.Height

	s.parallelRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				sx := float32(x) + field.DX[i]
				sy := float32(y) + field.DY[i]
				wv := dst.SampleBilinear(sx, sy, 0)
				sc.warped.Pix[i] = wv
				sc.dt[i] = wv - src.Pix[i]
			}
		}
	})

	var residualSum float64
	for i := 0; i < w*h; i++ {
		d := float64(sc.dt[i])
		residualSum += d * d
	}
	return residualSum / float64(w*h)
}

// applyUpdate performs one fixed-point update of the field from the
// warp left in the scratch. It returns the mean update magnitude.
func (s *Stage) applyUpdate(field *flow.Field, params pipeline.FlowParams, sc *scratch) float64 {
	w, h := sc.width, sc.height

	gx, gy := flow.Gradients(sc.warped)

	// Summed-area tables of the five gradient products; window sums
	// then cost O(1) per pixel.
	buildSAT(sc.satXX, gx, gx, nil, w, h)
	buildSAT(sc.satXY, gx, gy, nil, w, h)
	buildSAT(sc.satYY, gy, gy, nil, w, h)
	buildSAT(sc.satXT, gx, nil, sc.dt, w, h)
	buildSAT(sc.satYT, gy, nil, sc.dt, w, h)

	r := params.WindowRadius
	damping := params.Damping

	s.parallelRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			var rowSum float64
			ty0 := y - r
			ty1 := y + r
			if ty0 < 0 {
				ty0 = 0
			}
			if ty1 > h-1 {
				ty1 = h - 1
			}
			for x := 0; x < w; x++ {
				tx0 := x - r
				tx1 := x + r
				if tx0 < 0 {
					tx0 = 0
				}
				if tx1 > w-1 {
					tx1 = w - 1
				}

				sxx := boxSum(sc.satXX, w, tx0, ty0, tx1, ty1)
				sxy := boxSum(sc.satXY, w, tx0, ty0, tx1, ty1)
				syy := boxSum(sc.satYY, w, tx0, ty0, tx1, ty1)
				sxt := boxSum(sc.satXT, w, tx0, ty0, tx1, ty1)
				syt := boxSum(sc.satYT, w, tx0, ty0, tx1, ty1)

				// Damped normal equations: det stays >= damping^2,
				// so textureless windows yield a near-zero update
				// instead of NaN.
				a11 := sxx + damping
				a22 := syy + damping
				det := a11*a22 - sxy*sxy

				du := -(a22*sxt - sxy*syt) / det
				dv := -(a11*syt - sxy*sxt) / det

				i := y*w + x
				field.DX[i] += float32(du)
				field.DY[i] += float32(dv)
				rowSum += math.Sqrt(du*du + dv*dv)
			}
			sc.rowDelta[y] = rowSum
		}
	})

	// Combine per-row sums serially so the convergence decision does
	// not depend on the worker count.
	var deltaSum float64
	for _, v := range sc.rowDelta {
		deltaSum += v
	}
	return deltaSum / float64(w*h)
}

// buildSAT fills sat with the summed-area table of a*b (or a*c when b
// is nil). sat has (w+1)*(h+1) entries with a zero first row/column.
func buildSAT(sat []float64, a, b, c []float32, w, h int) {
	stride := w + 1
	for x := 0; x <= w; x++ {
		sat[x] = 0
	}
	for y := 0; y < h; y++ {
		sat[(y+1)*stride] = 0
		rowSum := 0.0
		for x := 0; x < w; x++ {
			i := y*w + x
			var v float64
			if b != nil {
				v = float64(a[i]) * float64(b[i])
			} else {
				v = float64(a[i]) * float64(c[i])
			}
			rowSum += v
			sat[(y+1)*stride+(x+1)] = sat[y*stride+(x+1)] + rowSum
		}
	}
}

// boxSum returns the inclusive window sum [x0..x1]x[y0..y1].
func boxSum(sat []float64, w, x0, y0, x1, y1 int) float64 {
	stride := w + 1
	return sat[(y1+1)*stride+(x1+1)] - sat[y0*stride+(x1+1)] - sat[(y1+1)*stride+x0] + sat[y0*stride+x0]
}

// parallelRows splits rows into contiguous chunks across the worker
// pool. Chunk boundaries depend only on the row count and worker
// count, and every write lands in a distinct row, so results are
// independent of scheduling.
func (s *Stage) parallelRows(h int, fn func(y0, y1 int)) {
	workers := s.workers
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		fn(0, h)
		return
	}

	chunk := (h + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += chunk {
		y1 := y0 + chunk
		if y1 > h {
			y1 = h
		}
		wg.Add(1)
		go func(a, b int) {
			defer wg.Done()
			fn(a, b)
		}(y0, y1)
	}
	wg.Wait()
}

// Ensure Stage implements the pipeline stage contract.
var _ pipeline.Stage[pipeline.EstimateInput, pipeline.EstimateResult] = (*Stage)(nil)
