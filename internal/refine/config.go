package refine

import "runtime"

// Default scan parameters
const (
	DefaultSearchWindowMS  = 250 // Audio examined beyond each original edge
	DefaultWindowMS        = 10  // Edge scan window width and step
	DefaultSeekStepMS      = 10  // Internal silence scan step
	DefaultMinSilenceRunMS = 500 // Shortest internal silence that splits a segment
	DefaultKeepSilenceMS   = 50  // Context kept either side of an internal split
)

// Config holds the parameters of one refinement run. It is passed by value
// and never modified once a run starts.
type Config struct {
	// Enabled selects split mode. When false the pipeline only applies the
	// global offsets to the input spans.
	Enabled bool

	SearchWindowMS  int
	WindowMS        int
	SeekStepMS      int
	MinSilenceRunMS int
	KeepSilenceMS   int

	// Threshold factors multiply a segment's own dBFS level. Use
	// ThresholdFactor to derive them from user percentages.
	EdgeThresholdFactor     float64
	InternalThresholdFactor float64

	// Global offsets in seconds, applied to every final span. May be negative.
	AdjustStart float64
	AdjustEnd   float64

	// Workers bounds per-segment parallelism. Values < 1 use GOMAXPROCS.
	Workers int
}

// DefaultConfig returns a split-mode configuration with the standard scan
// windows and the given threshold percentages.
func DefaultConfig(edgePct, internalPct float64) Config {
	return Config{
		Enabled:                 true,
		SearchWindowMS:          DefaultSearchWindowMS,
		WindowMS:                DefaultWindowMS,
		SeekStepMS:              DefaultSeekStepMS,
		MinSilenceRunMS:         DefaultMinSilenceRunMS,
		KeepSilenceMS:           DefaultKeepSilenceMS,
		EdgeThresholdFactor:     ThresholdFactor(edgePct),
		InternalThresholdFactor: ThresholdFactor(internalPct),
	}
}

// ThresholdFactor converts a percentage into a level multiplier: 1 + pct/100.
//
// The factor is applied to a negative dBFS level, so a positive percentage
// produces a more negative threshold and fewer windows count as silence.
func ThresholdFactor(pct float64) float64 {
	return 1.0 + pct/100
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}
