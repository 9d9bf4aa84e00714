// Package integration contains end-to-end tests for the interpolation
// pipeline, from keyframe files on disk to exported frame files.
package integration

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/optiflow/pkg/adapters/imagecodec"
	"github.com/user/optiflow/pkg/adapters/logger"
	"github.com/user/optiflow/pkg/adapters/nullsink"
	"github.com/user/optiflow/pkg/adapters/osfilesystem"
	"github.com/user/optiflow/pkg/orchestrator"
	"github.com/user/optiflow/pkg/pipeline"
	"github.com/user/optiflow/pkg/ports"
	"github.com/user/optiflow/pkg/sequencer"
	"github.com/user/optiflow/pkg/stages/estimate"
	"github.com/user/optiflow/pkg/stages/synthesize"
)

// writeKeyframe renders a textured 64x64 keyframe translated right by
// shift pixels, with a bright square riding along, and saves it as a
// PNG file. Translating the texture with the square gives the
// estimator a coherent global motion to recover.
func writeKeyframe(t *testing.T, path string, shift int) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			fx := float64(x - shift)
			v := 96 + 48*math.Sin(0.35*fx+0.2*float64(y)) + 32*math.Cos(0.17*fx-0.3*float64(y))
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	for y := 24; y < 40; y++ {
		for x := 16 + shift; x < 32+shift; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func newOrchestrator(workers int) *orchestrator.Orchestrator {
	log := logger.NewNoop()
	sink := nullsink.New()
	seq := sequencer.New(
		estimate.NewStage(sink, log, workers),
		synthesize.NewStage(sink, log, workers),
		log,
		0,
	)
	return orchestrator.New(seq, osfilesystem.New(), imagecodec.New(), sink, log)
}

// brightCentroidX returns the intensity-weighted mean x of the pixels
// above the brightness threshold within the square's row band.
func brightCentroidX(t *testing.T, path string) float64 {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := imagecodec.New().Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	var sum, weight float64
	for y := 26; y < 38; y++ {
		for x := 0; x < 64; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			v := float64(r >> 8)
			if v > 200 {
				sum += float64(x) * v
				weight += v
			}
		}
	}
	if weight == 0 {
		t.Fatalf("no bright pixels found in %s", path)
	}
	return sum / weight
}

func TestInterpolate_MovingSquare(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "key01.png")
	dstPath := filepath.Join(dir, "key02.png")
	outDir := filepath.Join(dir, "out")

	// Everything moves right by 8 px between the keyframes; the
	// bright square goes from x=16 to x=24.
	writeKeyframe(t, srcPath, 0)
	writeKeyframe(t, dstPath, 8)

	orch := newOrchestrator(2)
	result, err := orch.Run(context.Background(), orchestrator.Config{
		SourcePath: srcPath,
		TargetPath: dstPath,
		FrameCount: 3,
		Params:     pipeline.DefaultFlowParams(),
		OutputDir:  outDir,
		Pattern:    "frame-%04d",
		Format:     ports.FormatPNG,
		Quality:    90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FramesWritten != 3 {
		t.Fatalf("expected 3 frames, got %d", result.FramesWritten)
	}

	// The bright square's centroid starts at x=23.5 (center of
	// [16,32)) and ends at x=31.5; the inbetweens should track the
	// linear motion at t = 1/4, 1/2, 3/4.
	srcCentroid := brightCentroidX(t, srcPath)
	for i := 1; i <= 3; i++ {
		path := filepath.Join(outDir, fmt.Sprintf("frame-%04d.png", i))
		got := brightCentroidX(t, path)
		want := srcCentroid + 8.0*float64(i)/4.0
		if math.Abs(got-want) > 1.5 {
			t.Errorf("frame %d: expected square centroid near x=%.1f, got x=%.1f", i, want, got)
		}
	}
}

func TestInterpolate_IdenticalKeyframes(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "key01.png")
	dstPath := filepath.Join(dir, "key02.png")
	outDir := filepath.Join(dir, "out")

	writeKeyframe(t, srcPath, 20)
	writeKeyframe(t, dstPath, 20)

	orch := newOrchestrator(2)
	_, err := orch.Run(context.Background(), orchestrator.Config{
		SourcePath: srcPath,
		TargetPath: dstPath,
		FrameCount: 1,
		Params:     pipeline.DefaultFlowParams(),
		OutputDir:  outDir,
		Pattern:    "frame-%04d",
		Format:     ports.FormatPNG,
		Quality:    90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The inbetween of two identical keyframes must reproduce them.
	want, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	srcImg, err := imagecodec.New().Decode(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(outDir, "frame-0001.png"))
	if err != nil {
		t.Fatal(err)
	}
	gotImg, err := imagecodec.New().Decode(got)
	if err != nil {
		t.Fatal(err)
	}

	var maxDiff float64
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			r0, _, _, _ := srcImg.At(x, y).RGBA()
			r1, _, _, _ := gotImg.At(x, y).RGBA()
			d := math.Abs(float64(r0>>8) - float64(r1>>8))
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	if maxDiff > 2 {
		t.Errorf("inbetween of identical keyframes deviates by %.0f intensity levels", maxDiff)
	}
}

func TestInterpolate_Deterministic(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "key01.png")
	dstPath := filepath.Join(dir, "key02.png")

	writeKeyframe(t, srcPath, 16)
	writeKeyframe(t, dstPath, 24)

	run := func(workers int, outDir string) []byte {
		orch := newOrchestrator(workers)
		_, err := orch.Run(context.Background(), orchestrator.Config{
			SourcePath: srcPath,
			TargetPath: dstPath,
			FrameCount: 2,
			Params:     pipeline.DefaultFlowParams(),
			OutputDir:  outDir,
			Pattern:    "frame-%04d",
			Format:     ports.FormatPNG,
			Quality:    90,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(outDir, "frame-0001.png"))
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	a := run(1, filepath.Join(dir, "out-a"))
	b := run(8, filepath.Join(dir, "out-b"))

	if len(a) != len(b) {
		t.Fatalf("output sizes differ: %d vs %d bytes", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("outputs differ at byte %d", i)
		}
	}
}
