package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize resamples the buffer to the given dimensions using Catmull-Rom
// interpolation. It is used to shrink oversized keyframes before
// estimation; the 8-bit round trip is acceptable there because the
// resize happens before any numeric work.
func Resize(b *Buffer, width, height int) *Buffer {
	src := b.ToImage()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	resized := FromImage(dst)
	if b.Channels == 1 {
		resized = resized.Luminance()
	}
	resized.Depth = b.Depth
	return resized
}

// FitWithin returns the buffer itself when both sides are at most
// maxDim, otherwise a proportionally shrunk copy whose longer side
// equals maxDim. maxDim <= 0 disables the limit.
func FitWithin(b *Buffer, maxDim int) *Buffer {
	if maxDim <= 0 || (b.Width <= maxDim && b.Height <= maxDim) {
		return b
	}
	w, h := b.Width, b.Height
	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Resize(b, w, h)
}
