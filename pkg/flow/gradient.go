package flow

import (
	"github.com/user/optiflow/pkg/imaging"
)

// Gradients computes horizontal and vertical intensity gradients of a
// single-channel buffer via central finite differences. Edge pixels
// replicate the nearest interior gradient instead of reading out of
// bounds. Pure and deterministic.
func Gradients(b *imaging.Buffer) (gx, gy []float32) {
	w, h := b.Width, b.Height
	gx = make([]float32, w*h)
	gy = make([]float32, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			xl, xr := x-1, x+1
			if xl < 0 {
				xl = 0
			}
			if xr > w-1 {
				xr = w - 1
			}
			yu, yd := y-1, y+1
			if yu < 0 {
				yu = 0
			}
			if yd > h-1 {
				yd = h - 1
			}

			// Central difference; halves to one-sided at the border,
			// where the span shrinks to a single pixel.
			spanX := float32(xr - xl)
			spanY := float32(yd - yu)
			if spanX == 0 {
				spanX = 1
			}
			if spanY == 0 {
				spanY = 1
			}
			i := y*w + x
			gx[i] = (b.Pix[y*w+xr] - b.Pix[y*w+xl]) / spanX
			gy[i] = (b.Pix[yd*w+x] - b.Pix[yu*w+x]) / spanY
		}
	}
	return gx, gy
}
