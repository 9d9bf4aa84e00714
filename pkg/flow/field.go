// Package flow provides the dense displacement field type and the
// numeric primitives (gradients, pyramids) used by flow estimation.
package flow

// Field is a dense 2D displacement field: one (dx, dy) vector per
// pixel, row-major, in pixel units of the frame it was estimated at.
// Fields are immutable once estimation completes.
type Field struct {
	Width  int
	Height int
	DX     []float32
	DY     []float32
}

// NewField allocates a zero field.
func NewField(width, height int) *Field {
	return &Field{
		Width:  width,
		Height: height,
		DX:     make([]float32, width*height),
		DY:     make([]float32, width*height),
	}
}

// At returns the displacement vector at (x, y). No bounds checking.
func (f *Field) At(x, y int) (dx, dy float32) {
	i := y*f.Width + x
	return f.DX[i], f.DY[i]
}

// Negated returns a new field with every vector reversed. It serves as
// the approximate inverse flow when no reverse estimation was run.
func (f *Field) Negated() *Field {
	n := NewField(f.Width, f.Height)
	for i := range f.DX {
		n.DX[i] = -f.DX[i]
		n.DY[i] = -f.DY[i]
	}
	return n
}

// Upsample doubles the field resolution to (width, height), scaling
// vectors by 2 so they stay in pixel units of the finer level. The
// target dimensions are passed explicitly because odd-sized levels do
// not double exactly.
func (f *Field) Upsample(width, height int) *Field {
	up := NewField(width, height)
	sx := float32(f.Width) / float32(width)
	sy := float32(f.Height) / float32(height)
	for y := 0; y < height; y++ {
		srcY := (float32(y) + 0.5) * sy
		for x := 0; x < width; x++ {
			srcX := (float32(x) + 0.5) * sx
			dx, dy := f.sampleBilinear(srcX-0.5, srcY-0.5)
			i := y*width + x
			up.DX[i] = dx * 2
			up.DY[i] = dy * 2
		}
	}
	return up
}

func (f *Field) sampleBilinear(x, y float32) (float32, float32) {
	if x < 0 {
		x = 0
	} else if x > float32(f.Width-1) {
		x = float32(f.Width - 1)
	}
	if y < 0 {
		y = 0
	} else if y > float32(f.Height-1) {
		y = float32(f.Height - 1)
	}
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 > f.Width-1 {
		x1 = f.Width - 1
	}
	if y1 > f.Height-1 {
		y1 = f.Height - 1
	}
	fx := x - float32(x0)
	fy := y - float32(y0)

	lerp2 := func(v []float32) float32 {
		v00 := v[y0*f.Width+x0]
		v10 := v[y0*f.Width+x1]
		v01 := v[y1*f.Width+x0]
		v11 := v[y1*f.Width+x1]
		top := v00 + (v10-v00)*fx
		bottom := v01 + (v11-v01)*fx
		return top + (bottom-top)*fy
	}
	return lerp2(f.DX), lerp2(f.DY)
}

// ClampToBounds limits every vector so that applying it from its own
// pixel lands inside the image. Out-of-bounds displacement is clamped,
// never left undefined.
func (f *Field) ClampToBounds() {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := y*f.Width + x
			tx := float32(x) + f.DX[i]
			ty := float32(y) + f.DY[i]
			if tx < 0 {
				f.DX[i] = -float32(x)
			} else if tx > float32(f.Width-1) {
				f.DX[i] = float32(f.Width-1) - float32(x)
			}
			if ty < 0 {
				f.DY[i] = -float32(y)
			} else if ty > float32(f.Height-1) {
				f.DY[i] = float32(f.Height-1) - float32(y)
			}
		}
	}
}

// Mean returns the mean dx and dy over the whole field.
func (f *Field) Mean() (float64, float64) {
	var sx, sy float64
	for i := range f.DX {
		sx += float64(f.DX[i])
		sy += float64(f.DY[i])
	}
	n := float64(len(f.DX))
	if n == 0 {
		return 0, 0
	}
	return sx / n, sy / n
}

// Stats reports how an estimation run progressed. Residuals holds the
// mean squared brightness residual of the finest pyramid level, one
// entry per accepted iteration; the trace is non-increasing because
// an update that raises the residual is rolled back.
type Stats struct {
	Levels     int
	Iterations []int // iterations actually run per level, coarse first
	Residuals  []float64
}
