package refine

import "math"

// Interval is a half-open [StartMS, EndMS) range in whole milliseconds
type Interval struct {
	StartMS int `json:"start_ms"`
	EndMS   int `json:"end_ms"`
}

// Width returns EndMS - StartMS (negative for inverted intervals)
func (iv Interval) Width() int {
	return iv.EndMS - iv.StartMS
}

// Empty reports whether the interval covers no time
func (iv Interval) Empty() bool {
	return iv.EndMS <= iv.StartMS
}

// Clamp restricts both bounds to [0, durationMS]
func (iv Interval) Clamp(durationMS int) Interval {
	return Interval{
		StartMS: clampInt(iv.StartMS, 0, durationMS),
		EndMS:   clampInt(iv.EndMS, 0, durationMS),
	}
}

// Span is a time range in seconds, the representation used at the edges
// of the pipeline (VAD input and final output).
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Inverted reports whether the span ends before it starts
func (s Span) Inverted() bool {
	return s.Start > s.End
}

// ToInterval converts seconds to milliseconds, rounding to the nearest ms
func (s Span) ToInterval() Interval {
	return Interval{StartMS: secondsToMS(s.Start), EndMS: secondsToMS(s.End)}
}

// ToSpan converts an interval to seconds
func (iv Interval) ToSpan() Span {
	return Span{Start: float64(iv.StartMS) / 1000, End: float64(iv.EndMS) / 1000}
}

func secondsToMS(s float64) int {
	return int(math.Round(s * 1000))
}

// roundMS rounds seconds to millisecond precision
func roundMS(s float64) float64 {
	return math.Round(s*1000) / 1000
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
