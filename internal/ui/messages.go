package ui

import (
	"github.com/linuxmatters/voxtrim/internal/processor"
)

// ProgressMsg represents a progress update from the processor
type ProgressMsg struct {
	Pass         int     // 1 to 3
	PassName     string  // "Analyzing", "Refining" or "Writing"
	Progress     float64 // 0.0 to 1.0
	Level        float64 // Current audio level in dB
	Measurements *processor.AudioMeasurements
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex      int
	InputSegments  int
	OutputSegments int
	Dropped        int
	Flagged        int // Inverted or overlapping output segments
	Advisories     int
	NoiseFloor     float64
	OutputPath     string
	Error          error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}
