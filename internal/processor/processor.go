// Package processor orchestrates segment refinement for one audio file
package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/voxtrim/internal/audio"
	"github.com/linuxmatters/voxtrim/internal/config"
	"github.com/linuxmatters/voxtrim/internal/mains"
	"github.com/linuxmatters/voxtrim/internal/refine"
	"github.com/linuxmatters/voxtrim/internal/segments"
	"github.com/sirupsen/logrus"
)

// Processing passes reported to the progress callback
const (
	PassAnalyze = 1
	PassRefine  = 2
	PassWrite   = 3
)

// ErrNoSegments is returned when no segment list was given or found
var ErrNoSegments = errors.New("no segment list found")

// sidecarExtensions are tried, in order, next to the audio file
var sidecarExtensions = []string{".xml", ".json", ".segments"}

// ProgressFunc receives progress updates for each pass. level is the
// current audio level in dBFS for the level meter, or 0 when not relevant.
type ProgressFunc func(pass int, passName string, progress float64, level float64, measurements *AudioMeasurements)

// Job names the files for one run
type Job struct {
	AudioPath    string
	SegmentsPath string // Empty: look for a sidecar next to the audio
	OutputPath   string // Empty: derived from AudioPath and the output config
}

// ProcessingResult contains the results of processing one file
type ProcessingResult struct {
	AudioPath    string
	SegmentsPath string
	OutputPath   string // Empty for Inspect
	Format       segments.Format

	Metadata     *audio.Metadata    // nil in pass-through mode
	Measurements *AudioMeasurements // nil in pass-through mode
	MainsHz      int                // 0 when hum rejection is off

	Input      []refine.Span
	Refinement *refine.Result
	Config     refine.Config // Parameters used for the run

	AnalysisTime time.Duration
	RefineTime   time.Duration
	WriteTime    time.Duration
}

// ProcessFile refines the segments of one audio file and writes them out:
//   - Pass 1: decode audio, optionally remove mains hum, measure levels
//   - Pass 2: refine and split every segment
//   - Pass 3: write the output segment list
//
// In pass-through mode the audio is not decoded and pass 1 only reads the
// segment list. If progress is not nil it is called with updates.
func ProcessFile(ctx context.Context, job Job, cfg *config.Config, progress ProgressFunc) (*ProcessingResult, error) {
	result, err := run(ctx, job, cfg, progress)
	if err != nil {
		return nil, err
	}

	report(progress, PassWrite, "Writing", 0, 0, result.Measurements)
	writeStart := time.Now()

	result.OutputPath = job.OutputPath
	if result.OutputPath == "" {
		result.OutputPath = generateOutputPath(job.AudioPath, cfg.Output.Suffix, result.Format)
	}
	if filepath.Clean(result.OutputPath) == filepath.Clean(result.SegmentsPath) {
		return nil, fmt.Errorf("output %s would overwrite the input segments", result.OutputPath)
	}

	column := segments.ColumnPassThrough
	if result.Refinement.Split {
		column = segments.ColumnAdjusted
	}
	if result.Format == segments.Kaldi {
		column = recordingID(job.AudioPath)
	}

	if err := segments.WriteFile(result.OutputPath, result.Format, result.Refinement.Spans, column); err != nil {
		return nil, fmt.Errorf("pass 3 failed: %w", err)
	}
	result.WriteTime = time.Since(writeStart)
	report(progress, PassWrite, "Writing", 1, 0, result.Measurements)

	logrus.WithFields(logrus.Fields{
		"output":   result.OutputPath,
		"segments": len(result.Refinement.Spans),
	}).Debug("wrote refined segments")

	return result, nil
}

// Inspect runs passes 1 and 2 without writing anything
func Inspect(ctx context.Context, job Job, cfg *config.Config, progress ProgressFunc) (*ProcessingResult, error) {
	return run(ctx, job, cfg, progress)
}

func run(ctx context.Context, job Job, cfg *config.Config, progress ProgressFunc) (*ProcessingResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, err := segments.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	log := logrus.WithField("audio", job.AudioPath)
	result := &ProcessingResult{
		AudioPath: job.AudioPath,
		Format:    format,
		Config:    cfg.Pipeline(),
	}

	// Pass 1: Analysis
	report(progress, PassAnalyze, "Analyzing", 0, 0, nil)
	analysisStart := time.Now()

	result.SegmentsPath = job.SegmentsPath
	if result.SegmentsPath == "" {
		if result.SegmentsPath, err = FindSegments(job.AudioPath); err != nil {
			return nil, err
		}
	}
	result.Input, err = segments.Read(result.SegmentsPath)
	if err != nil {
		return nil, fmt.Errorf("pass 1 failed: %w", err)
	}
	log.WithFields(logrus.Fields{
		"segments_file": result.SegmentsPath,
		"segments":      len(result.Input),
	}).Debug("read input segments")

	var buf *audio.Buffer
	if result.Config.Enabled {
		buf, result.Metadata, err = audio.OpenAudioFile(job.AudioPath)
		if err != nil {
			return nil, fmt.Errorf("pass 1 failed: %w", err)
		}

		result.MainsHz, err = mains.Resolve(cfg.Audio.Hum)
		if err != nil {
			return nil, err
		}
		if result.MainsHz > 0 {
			buf = buf.RemoveHum(float64(result.MainsHz), cfg.Audio.HumHarmonics, cfg.Audio.HumQ)
			log.WithField("mains_hz", result.MainsHz).Debug("applied hum notch")
		}

		result.Measurements = AnalyzeBuffer(buf, func(p, level float64) {
			report(progress, PassAnalyze, "Analyzing", p, level, nil)
		})
		log.WithFields(logrus.Fields{
			"rms_level":   result.Measurements.RMSLevel,
			"noise_floor": result.Measurements.NoiseFloor,
		}).Debug("analysed audio")
	}

	result.AnalysisTime = time.Since(analysisStart)
	report(progress, PassAnalyze, "Analyzing", 1, 0, result.Measurements)

	// Pass 2: Refinement
	passName := "Refining"
	if !result.Config.Enabled {
		passName = "Adjusting"
	}
	report(progress, PassRefine, passName, 0, 0, result.Measurements)
	refineStart := time.Now()

	pipeline := refine.NewPipeline(result.Config)
	pipeline.Progress = func(done, total int) {
		if total > 0 {
			report(progress, PassRefine, passName, float64(done)/float64(total), 0, result.Measurements)
		}
	}
	result.Refinement, err = pipeline.Run(ctx, buf, result.Input)
	if err != nil {
		return nil, fmt.Errorf("pass 2 failed: %w", err)
	}
	result.RefineTime = time.Since(refineStart)
	report(progress, PassRefine, passName, 1, 0, result.Measurements)

	log.WithFields(logrus.Fields{
		"input":    len(result.Input),
		"output":   len(result.Refinement.Spans),
		"dropped":  len(result.Refinement.Dropped),
		"inverted": len(result.Refinement.Inverted),
	}).Debug("refined segments")

	return result, nil
}

func report(progress ProgressFunc, pass int, name string, p, level float64, m *AudioMeasurements) {
	if progress != nil {
		progress(pass, name, p, level, m)
	}
}

// FindSegments looks for a segment list beside audioPath with the same base
// name, e.g. interview.wav → interview.xml, interview.json, interview.segments
func FindSegments(audioPath string) (string, error) {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	for _, ext := range sidecarExtensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s", ErrNoSegments, audioPath)
}

// generateOutputPath creates the output filename from the input filename
// Example: /path/to/audio.wav → /path/to/audio-refined.xml
func generateOutputPath(inputPath, suffix string, format segments.Format) string {
	dir := filepath.Dir(inputPath)
	filename := filepath.Base(inputPath)
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	return filepath.Join(dir, nameWithoutExt+suffix+format.Extension())
}

// recordingID derives a Kaldi recording id from the audio file name
func recordingID(audioPath string) string {
	name := filepath.Base(audioPath)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.Join(strings.Fields(name), "_")
}
