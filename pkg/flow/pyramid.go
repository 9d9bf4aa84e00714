package flow

import (
	"github.com/user/optiflow/pkg/imaging"
)

// minPyramidSide is the smallest allowed shorter side of the coarsest
// pyramid level when the level count is chosen automatically.
const minPyramidSide = 16

// AutoLevels picks a pyramid level count so that the coarsest level is
// still at least minPyramidSide pixels on its shorter side. The result
// is always at least 1 (the full-resolution level itself).
func AutoLevels(width, height int) int {
	side := width
	if height < side {
		side = height
	}
	levels := 1
	for side/2 >= minPyramidSide {
		side /= 2
		levels++
	}
	return levels
}

// Downsample2x halves a single-channel buffer with a 2x2 box filter.
// Odd trailing rows/columns fold into the last output pixel. The
// float plane is averaged directly; going through an 8-bit image here
// would quantize away the gradients estimation depends on.
func Downsample2x(b *imaging.Buffer) *imaging.Buffer {
	w := b.Width / 2
	h := b.Height / 2
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := imaging.NewBuffer(w, h, 1, b.Depth)

	for y := 0; y < h; y++ {
		sy0 := y * 2
		sy1 := sy0 + 1
		if sy1 > b.Height-1 {
			sy1 = b.Height - 1
		}
		for x := 0; x < w; x++ {
			sx0 := x * 2
			sx1 := sx0 + 1
			if sx1 > b.Width-1 {
				sx1 = b.Width - 1
			}
			sum := b.Pix[sy0*b.Width+sx0] + b.Pix[sy0*b.Width+sx1] +
				b.Pix[sy1*b.Width+sx0] + b.Pix[sy1*b.Width+sx1]
			out.Pix[y*w+x] = sum * 0.25
		}
	}
	return out
}

// BuildPyramid builds a coarse-to-fine pyramid from a single-channel
// buffer. Index 0 is the full-resolution level, the last index the
// coarsest. levels <= 0 selects the count automatically.
func BuildPyramid(lum *imaging.Buffer, levels int) []*imaging.Buffer {
	if levels <= 0 {
		levels = AutoLevels(lum.Width, lum.Height)
	}
	pyr := make([]*imaging.Buffer, 0, levels)
	pyr = append(pyr, lum)
	for i := 1; i < levels; i++ {
		prev := pyr[i-1]
		if prev.Width/2 < 1 || prev.Height/2 < 1 {
			break
		}
		pyr = append(pyr, Downsample2x(prev))
	}
	return pyr
}
