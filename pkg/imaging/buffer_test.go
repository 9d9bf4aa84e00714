package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestFromImage_Gray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.SetGray(2, 1, color.Gray{Y: 255})

	b := FromImage(img)

	if b.Width != 4 || b.Height != 3 || b.Channels != 1 {
		t.Fatalf("unexpected shape: %s", b.Shape())
	}
	if b.At(2, 1, 0) != 1.0 {
		t.Errorf("expected 1.0 at (2,1), got %f", b.At(2, 1, 0))
	}
	if b.At(0, 0, 0) != 0.0 {
		t.Errorf("expected 0.0 at (0,0), got %f", b.At(0, 0, 0))
	}
}

func TestFromImage_Color(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 128, B: 0, A: 255})

	b := FromImage(img)

	if b.Channels != 3 {
		t.Fatalf("expected 3 channels, got %d", b.Channels)
	}
	if b.At(1, 0, 0) != 1.0 {
		t.Errorf("red: expected 1.0, got %f", b.At(1, 0, 0))
	}
	if math.Abs(float64(b.At(1, 0, 1))-128.0/255.0) > 0.01 {
		t.Errorf("green: expected ~0.5, got %f", b.At(1, 0, 1))
	}
	if b.At(1, 0, 2) != 0.0 {
		t.Errorf("blue: expected 0.0, got %f", b.At(1, 0, 2))
	}
}

func TestToImage_RoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 30), B: 100, A: 255})
		}
	}

	out := FromImage(img).ToImage()

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := img.NRGBAAt(x, y)
			got := out.(*image.NRGBA).NRGBAAt(x, y)
			if want != got {
				t.Fatalf("(%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestLuminance(t *testing.T) {
	b := NewBuffer(2, 1, 3, Depth8)
	// Pure green pixel.
	b.Set(0, 0, 1, 1.0)

	lum := b.Luminance()

	if lum.Channels != 1 {
		t.Fatalf("expected 1 channel, got %d", lum.Channels)
	}
	if math.Abs(float64(lum.At(0, 0, 0))-0.587) > 1e-6 {
		t.Errorf("expected 0.587, got %f", lum.At(0, 0, 0))
	}
	if lum.At(1, 0, 0) != 0 {
		t.Errorf("expected 0, got %f", lum.At(1, 0, 0))
	}
}

func TestSampleBilinear(t *testing.T) {
	b := NewBuffer(2, 2, 1, DepthFloat)
	b.Set(0, 0, 0, 0)
	b.Set(1, 0, 0, 1)
	b.Set(0, 1, 0, 0)
	b.Set(1, 1, 0, 1)

	if got := b.SampleBilinear(0.5, 0.5, 0); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("center: expected 0.5, got %f", got)
	}

	// Out-of-bounds samples clamp to the border.
	if got := b.SampleBilinear(-5, 0, 0); got != 0 {
		t.Errorf("left clamp: expected 0, got %f", got)
	}
	if got := b.SampleBilinear(10, 0, 0); got != 1 {
		t.Errorf("right clamp: expected 1, got %f", got)
	}
}

func TestFitWithin(t *testing.T) {
	b := NewBuffer(200, 100, 3, Depth8)

	same := FitWithin(b, 400)
	if same != b {
		t.Error("expected buffer to be returned unchanged under the limit")
	}
	if got := FitWithin(b, 0); got != b {
		t.Error("limit 0 should disable resizing")
	}

	small := FitWithin(b, 100)
	if small.Width != 100 || small.Height != 50 {
		t.Errorf("expected 100x50, got %dx%d", small.Width, small.Height)
	}
}

func TestSameShape(t *testing.T) {
	a := NewBuffer(4, 4, 3, Depth8)
	if !a.SameShape(NewBuffer(4, 4, 3, DepthFloat)) {
		t.Error("depth should not affect shape equality")
	}
	if a.SameShape(NewBuffer(4, 5, 3, Depth8)) {
		t.Error("height mismatch not detected")
	}
	if a.SameShape(NewBuffer(4, 4, 1, Depth8)) {
		t.Error("channel mismatch not detected")
	}
	if a.SameShape(nil) {
		t.Error("nil should not match")
	}
}
