package flow

import (
	"testing"

	"github.com/user/optiflow/pkg/imaging"
)

func TestAutoLevels(t *testing.T) {
	tests := []struct {
		w, h   int
		levels int
	}{
		{16, 16, 1},
		{32, 32, 2},
		{64, 64, 3},
		{128, 64, 3},
		{1920, 1080, 7},
		{8, 8, 1},
	}
	for _, tc := range tests {
		if got := AutoLevels(tc.w, tc.h); got != tc.levels {
			t.Errorf("AutoLevels(%d,%d): expected %d, got %d", tc.w, tc.h, tc.levels, got)
		}
	}
}

func TestBuildPyramid_Dimensions(t *testing.T) {
	lum := imaging.NewBuffer(64, 48, 1, imaging.DepthFloat)

	pyr := BuildPyramid(lum, 3)

	if len(pyr) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(pyr))
	}
	if pyr[0].Width != 64 || pyr[0].Height != 48 {
		t.Errorf("level 0: expected 64x48, got %dx%d", pyr[0].Width, pyr[0].Height)
	}
	if pyr[1].Width != 32 || pyr[1].Height != 24 {
		t.Errorf("level 1: expected 32x24, got %dx%d", pyr[1].Width, pyr[1].Height)
	}
	if pyr[2].Width != 16 || pyr[2].Height != 12 {
		t.Errorf("level 2: expected 16x12, got %dx%d", pyr[2].Width, pyr[2].Height)
	}
}

func TestDownsample2x_BoxAverage(t *testing.T) {
	b := imaging.NewBuffer(2, 2, 1, imaging.DepthFloat)
	b.Pix[0] = 0.0
	b.Pix[1] = 1.0
	b.Pix[2] = 1.0
	b.Pix[3] = 0.0

	down := Downsample2x(b)

	if down.Width != 1 || down.Height != 1 {
		t.Fatalf("expected 1x1, got %dx%d", down.Width, down.Height)
	}
	if down.Pix[0] != 0.5 {
		t.Errorf("expected 0.5, got %f", down.Pix[0])
	}
}
