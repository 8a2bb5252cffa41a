package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linuxmatters/voxtrim/internal/config"
)

func TestRefineFlagsApply(t *testing.T) {
	edge, internal := 10.0, -5.0
	start, end := -100.0, 150.0
	workers := 3

	cfg := config.Default()
	flags := RefineFlags{
		EdgeThreshold:     &edge,
		InternalThreshold: &internal,
		AdjustStartMS:     &start,
		AdjustEndMS:       &end,
		Hum:               "60",
		Workers:           &workers,
	}
	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	p := cfg.Pipeline()
	if p.AdjustStart != -0.1 || p.AdjustEnd != 0.15 {
		t.Errorf("offsets = %v/%v, want -0.1/0.15", p.AdjustStart, p.AdjustEnd)
	}
	if cfg.Audio.Hum != "60" {
		t.Errorf("Hum = %q, want 60", cfg.Audio.Hum)
	}
	if p.Workers != 3 {
		t.Errorf("Workers = %d, want 3", p.Workers)
	}
	if !p.Enabled {
		t.Error("split mode should stay enabled")
	}
}

func TestRefineFlagsApplyKeepsConfigWhenUnset(t *testing.T) {
	cfg := config.Default()
	cfg.Refine.SetThresholds(20, 30)
	cfg.Refine.AdjustStartMS = -50

	flags := RefineFlags{NoSplit: true}
	flags.apply(cfg)

	if cfg.Refine.Split {
		t.Error("--no-split should disable split mode")
	}
	if *cfg.Refine.EdgeThreshold != 20 || *cfg.Refine.InternalThreshold != 30 {
		t.Error("unset threshold flags must not replace config values")
	}
	if cfg.Refine.AdjustStartMS != -50 {
		t.Errorf("AdjustStartMS = %v, want -50", cfg.Refine.AdjustStartMS)
	}
	if cfg.Audio.Hum != config.Default().Audio.Hum {
		t.Errorf("Hum = %q, want the default", cfg.Audio.Hum)
	}
}

func TestRefineCmdNeedsFiles(t *testing.T) {
	cmd := &RefineCmd{}
	if err := cmd.Run(config.Default()); err != errNoInput {
		t.Errorf("Run() error = %v, want errNoInput", err)
	}

	cmd = &RefineCmd{Files: []string{"a.wav", "b.wav"}}
	cmd.Segments = "a.xml"
	if err := cmd.Run(config.Default()); err == nil {
		t.Error("--segments with several files should fail")
	}
}

func TestRunWithDebugLogReportsCloseError(t *testing.T) {
	closeErr := errors.New("disk full")
	orig := setupDebugLog
	setupDebugLog = func(path, level string) (func() error, error) {
		return func() error { return closeErr }, nil
	}
	t.Cleanup(func() { setupDebugLog = orig })

	err := runWithDebugLog(config.Default(), func() error { return nil })
	if !errors.Is(err, closeErr) {
		t.Fatalf("runWithDebugLog() error = %v, want close error", err)
	}

	err = runWithDebugLog(config.Default(), func() error { return errNoInput })
	if !errors.Is(err, errNoInput) || !errors.Is(err, closeErr) {
		t.Errorf("runWithDebugLog() error = %v, want both errors", err)
	}
}

func TestRunWithDebugLogWritesFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.DebugFile = filepath.Join(t.TempDir(), "debug.log")
	cfg.Logging.Level = "debug"

	ran := false
	err := runWithDebugLog(cfg, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("runWithDebugLog() error = %v", err)
	}
	if !ran {
		t.Fatal("runWithDebugLog() did not call fn")
	}

	data, err := os.ReadFile(cfg.Logging.DebugFile)
	if err != nil {
		t.Fatalf("reading debug log: %v", err)
	}
	if !strings.Contains(string(data), "voxtrim starting") {
		t.Errorf("debug log = %q, want start message", data)
	}
}
