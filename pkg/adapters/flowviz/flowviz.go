// Package flowviz renders displacement fields as arrow plots for
// debug output.
package flowviz

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/user/optiflow/pkg/flow"
)

// Options configures field rendering.
type Options struct {
	// Step is the arrow grid spacing in pixels.
	Step int
	// Background shades pixels by displacement magnitude when true.
	Background bool
}

// DefaultOptions returns rendering defaults.
func DefaultOptions() Options {
	return Options{Step: 8, Background: true}
}

// Render draws the field as arrows on a magnitude-shaded backdrop.
// The output image has the field's dimensions.
func Render(field *flow.Field, opts Options) image.Image {
	if opts.Step < 1 {
		opts.Step = 8
	}

	dc := gg.NewContext(field.Width, field.Height)
	dc.SetColor(color.Black)
	dc.Clear()

	if opts.Background {
		maxMag := maxMagnitude(field)
		if maxMag > 0 {
			for y := 0; y < field.Height; y++ {
				for x := 0; x < field.Width; x++ {
					dx, dy := field.At(x, y)
					mag := math.Hypot(float64(dx), float64(dy))
					shade := uint8(255 * mag / maxMag)
					dc.SetColor(color.NRGBA{R: shade / 3, G: shade / 3, B: shade, A: 255})
					dc.SetPixel(x, y)
				}
			}
		}
	}

	dc.SetColor(color.NRGBA{R: 255, G: 220, B: 80, A: 255})
	dc.SetLineWidth(1)
	for y := opts.Step / 2; y < field.Height; y += opts.Step {
		for x := opts.Step / 2; x < field.Width; x += opts.Step {
			dx, dy := field.At(x, y)
			drawArrow(dc, float64(x), float64(y), float64(x)+float64(dx), float64(y)+float64(dy))
		}
	}

	return dc.Image()
}

func drawArrow(dc *gg.Context, x0, y0, x1, y1 float64) {
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()

	// Arrowhead only when the vector is long enough to read.
	if math.Hypot(x1-x0, y1-y0) < 2 {
		dc.DrawPoint(x0, y0, 0.5)
		dc.Fill()
		return
	}
	angle := math.Atan2(y1-y0, x1-x0)
	const headLen = 3.0
	for _, da := range []float64{math.Pi - 0.5, math.Pi + 0.5} {
		dc.DrawLine(x1, y1, x1+headLen*math.Cos(angle+da), y1+headLen*math.Sin(angle+da))
		dc.Stroke()
	}
}

func maxMagnitude(field *flow.Field) float64 {
	var max float64
	for i := range field.DX {
		m := math.Hypot(float64(field.DX[i]), float64(field.DY[i]))
		if m > max {
			max = m
		}
	}
	return max
}
