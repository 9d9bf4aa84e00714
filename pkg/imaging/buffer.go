// Package imaging provides the normalized in-memory image representation
// shared by all estimation and synthesis stages.
package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Depth identifies the sample depth an image was created with.
// Storage is always normalized float32; the depth only controls how
// the buffer is quantized when converted back to an image.Image.
type Depth int

const (
	// Depth8 marks buffers originating from (or destined for) 8-bit images.
	Depth8 Depth = iota
	// DepthFloat marks buffers carrying full float precision.
	DepthFloat
)

// Buffer is a decoded raster image: row-major, channel-interleaved,
// normalized float32 samples in [0, 1].
//
// Buffers are never mutated after creation. The creating stage fills
// Pix and then hands the buffer to the next stage, which treats it as
// read-only.
type Buffer struct {
	Width    int
	Height   int
	Channels int // 1 (grayscale) or 3 (RGB)
	Depth    Depth
	Pix      []float32 // len = Width*Height*Channels
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height, channels int, depth Depth) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Depth:    depth,
		Pix:      make([]float32, width*height*channels),
	}
}

// FromImage converts a decoded image into a Buffer. Grayscale images
// become single-channel buffers, everything else becomes RGB.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		b := NewBuffer(w, h, 1, Depth8)
		for y := 0; y < h; y++ {
			row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
			for x := 0; x < w; x++ {
				b.Pix[y*w+x] = float32(row[x]) / 255.0
			}
		}
		return b
	}

	b := NewBuffer(w, h, 3, Depth8)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			b.Pix[i] = float32(r) / 65535.0
			b.Pix[i+1] = float32(g) / 65535.0
			b.Pix[i+2] = float32(bl) / 65535.0
			i += 3
		}
	}
	return b
}

// ToImage converts the buffer back to an image.Image for encoding.
// Single-channel buffers become *image.Gray, RGB buffers *image.NRGBA.
func (b *Buffer) ToImage() image.Image {
	if b.Channels == 1 {
		img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: quantize(b.Pix[y*b.Width+x])})
			}
		}
		return img
	}

	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	i := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: quantize(b.Pix[i]),
				G: quantize(b.Pix[i+1]),
				B: quantize(b.Pix[i+2]),
				A: 255,
			})
			i += 3
		}
	}
	return img
}

func quantize(v float32) uint8 {
	s := v*255.0 + 0.5
	if s <= 0 {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint8(s)
}

// At returns the sample at (x, y) for channel c. No bounds checking.
func (b *Buffer) At(x, y, c int) float32 {
	return b.Pix[(y*b.Width+x)*b.Channels+c]
}

// Set stores a sample at (x, y) for channel c. Only the stage that
// created the buffer may call Set.
func (b *Buffer) Set(x, y, c int, v float32) {
	b.Pix[(y*b.Width+x)*b.Channels+c] = v
}

// SameShape reports whether two buffers share dimensions and channel count.
func (b *Buffer) SameShape(other *Buffer) bool {
	return other != nil && b.Width == other.Width && b.Height == other.Height && b.Channels == other.Channels
}

// Shape returns a short human-readable description like "512x640x3".
func (b *Buffer) Shape() string {
	return fmt.Sprintf("%dx%dx%d", b.Width, b.Height, b.Channels)
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.Width, b.Height, b.Channels, b.Depth)
	copy(c.Pix, b.Pix)
	return c
}

// Luminance reduces the buffer to a single-channel plane using the
// Rec. 601 weights. Single-channel buffers are copied as-is.
func (b *Buffer) Luminance() *Buffer {
	if b.Channels == 1 {
		return b.Clone()
	}
	lum := NewBuffer(b.Width, b.Height, 1, b.Depth)
	for p := 0; p < b.Width*b.Height; p++ {
		i := p * 3
		lum.Pix[p] = 0.299*b.Pix[i] + 0.587*b.Pix[i+1] + 0.114*b.Pix[i+2]
	}
	return lum
}

// SampleBilinear samples channel c at the fractional position (x, y)
// with bilinear interpolation. Coordinates outside the image are
// clamped to the border (replication, not transparency).
func (b *Buffer) SampleBilinear(x, y float32, c int) float32 {
	maxX := float32(b.Width - 1)
	maxY := float32(b.Height - 1)
	if x < 0 {
		x = 0
	} else if x > maxX {
		x = maxX
	}
	if y < 0 {
		y = 0
	} else if y > maxY {
		y = maxY
	}

	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > b.Width-1 {
		x1 = b.Width - 1
	}
	if y1 > b.Height-1 {
		y1 = b.Height - 1
	}

	fx := x - float32(x0)
	fy := y - float32(y0)

	v00 := b.At(x0, y0, c)
	v10 := b.At(x1, y0, c)
	v01 := b.At(x0, y1, c)
	v11 := b.At(x1, y1, c)

	top := v00 + (v10-v00)*fx
	bottom := v01 + (v11-v01)*fx
	return top + (bottom-top)*fy
}
