// Package synthesize implements the frame synthesis stage.
//
// Each intermediate frame is produced by bidirectional warping: the
// source is sampled along the forward field scaled by t, the target
// along the remaining (1-t) fraction, and the two warps are blended
// linearly. Samples falling outside the image are border-clamped; no
// explicit disocclusion handling is attempted, the blend approximates
// holes. That is a documented quality limitation.
package synthesize

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/user/optiflow/pkg/flow"
	"github.com/user/optiflow/pkg/imaging"
	"github.com/user/optiflow/pkg/pipeline"
	"github.com/user/optiflow/pkg/ports"
)

// Stage synthesizes intermediate frames from a displacement field.
type Stage struct {
	sink    ports.DebugSink
	logger  ports.Logger
	workers int
}

// NewStage creates a new synthesize stage.
func NewStage(sink ports.DebugSink, logger ports.Logger, workers int) *Stage {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Stage{
		sink:    sink,
		logger:  logger.WithComponent("synthesize"),
		workers: workers,
	}
}

// indexedFrame holds a frame with its original index for sorting.
type indexedFrame struct {
	index int
	frame *imaging.Buffer
}

// Execute synthesizes all requested frames. Frame i is computed at
// t = (i+1)/(N+1), strictly between the keyframes. The warps share the
// immutable field and run on a worker pool.
func (s *Stage) Execute(ctx context.Context, input pipeline.SynthesizeInput) (pipeline.SynthesizeResult, error) {
	n := input.FrameCount
	s.logger.Debug("Synthesizing %d frames with %d workers", n, s.workers)

	jobs := make(chan int, n)
	results := make(chan indexedFrame, n)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				t := float64(i+1) / float64(n+1)
				frame := WarpFrame(input.Source, input.Target, input.Forward, input.Backward, t)
				results <- indexedFrame{index: i, frame: frame}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	frames := make([]indexedFrame, 0, n)
	for res := range results {
		frames = append(frames, res)
		if s.sink.Enabled() {
			s.sink.SaveFrame(res.index, res.frame.ToImage())
		}
	}

	if err := ctx.Err(); err != nil {
		return pipeline.SynthesizeResult{}, fmt.Errorf("frame synthesis cancelled: %w", err)
	}
	if len(frames) != n {
		return pipeline.SynthesizeResult{}, fmt.Errorf("synthesized %d of %d frames", len(frames), n)
	}

	sort.Slice(frames, func(a, b int) bool {
		return frames[a].index < frames[b].index
	})

	result := pipeline.SynthesizeResult{Frames: make([]*imaging.Buffer, n)}
	for i, f := range frames {
		result.Frames[i] = f.frame
	}
	return result, nil
}

// WarpFrame synthesizes one intermediate frame at time t in (0, 1).
// The forward warp samples the source at q - t*D(q); the backward warp
// samples the target at q + (1-t)*D(q), or at q - (1-t)*Drev(q) when a
// reverse field is available. The results blend with weights (1-t)/t.
// Identical inputs always produce identical output.
func WarpFrame(source, target *imaging.Buffer, forward, backward *flow.Field, t float64) *imaging.Buffer {
	w, h, ch := source.Width, source.Height, source.Channels
	out := imaging.NewBuffer(w, h, ch, source.Depth)

	tf := float32(t)
	rf := float32(1 - t)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x

			fdx, fdy := forward.DX[i], forward.DY[i]
			fx := float32(x) - tf*fdx
			fy := float32(y) - tf*fdy

			var bx, by float32
			if backward != nil {
				bdx, bdy := backward.DX[i], backward.DY[i]
				bx = float32(x) - rf*bdx
				by = float32(y) - rf*bdy
			} else {
				bx = float32(x) + rf*fdx
				by = float32(y) + rf*fdy
			}

			base := i * ch
			for c := 0; c < ch; c++ {
				fwd := source.SampleBilinear(fx, fy, c)
				bwd := target.SampleBilinear(bx, by, c)
				out.Pix[base+c] = rf*fwd + tf*bwd
			}
		}
	}
	return out
}

// Ensure Stage implements the pipeline stage contract.
var _ pipeline.Stage[pipeline.SynthesizeInput, pipeline.SynthesizeResult] = (*Stage)(nil)
