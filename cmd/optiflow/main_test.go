package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/optiflow/pkg/adapters/imagecodec"
	"github.com/user/optiflow/pkg/adapters/logger"
	"github.com/user/optiflow/pkg/adapters/osfilesystem"
	"github.com/user/optiflow/pkg/mocks"
)

func TestBuildSink_DisabledWithoutDebug(t *testing.T) {
	sink := buildSink(osfilesystem.New(), imagecodec.New(), false, t.TempDir(), logger.NewNoop())

	if sink.Enabled() {
		t.Error("expected the null sink when debugging is off")
	}
}

func TestBuildSink_EnabledWithDebug(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")

	sink := buildSink(osfilesystem.New(), imagecodec.New(), true, dir, logger.NewNoop())

	if !sink.Enabled() {
		t.Error("expected a file sink when debugging is on")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("debug directory was not created: %v", err)
	}
}

func TestBuildSink_FallsBackWhenDirUnavailable(t *testing.T) {
	// A file in the way makes MkdirAll fail; the sink must fall back
	// to the no-op instead of erroring on every later write.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	log := mocks.NewLogger()
	sink := buildSink(osfilesystem.New(), imagecodec.New(), true, filepath.Join(blocker, "debug"), log)

	if sink.Enabled() {
		t.Error("expected the null sink when the debug directory cannot be created")
	}
	if len(log.Messages) == 0 {
		t.Error("expected a warning about the unavailable debug directory")
	}
}
