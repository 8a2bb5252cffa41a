package processor

import (
	"math"

	"github.com/linuxmatters/voxtrim/internal/audio"
	"github.com/linuxmatters/voxtrim/internal/refine"
)

// analysisIntervalMS is the block length used for noise floor estimation
const analysisIntervalMS = 250

// AudioMeasurements contains whole-file statistics from the analysis pass
type AudioMeasurements struct {
	RMSLevel     float64 `json:"rms_level"`     // Overall RMS level (dBFS)
	PeakLevel    float64 `json:"peak_level"`    // Overall sample peak (dBFS)
	NoiseFloor   float64 `json:"noise_floor"`   // RMS level of the quietest interval (dBFS)
	LoudestLevel float64 `json:"loudest_level"` // RMS level of the loudest interval (dBFS)
	DynamicRange float64 `json:"dynamic_range"` // LoudestLevel - NoiseFloor (dB)
	Intervals    int     `json:"intervals"`     // Number of analysis intervals
	DurationMS   int     `json:"duration_ms"`
}

// AnalyzeBuffer measures levels over the whole buffer and across
// consecutive 250ms intervals. The quietest interval approximates the
// room's noise floor between words. If levelFn is not nil it receives the
// fraction analysed and the level of each interval as it is measured.
func AnalyzeBuffer(buf *audio.Buffer, levelFn func(progress, level float64)) *AudioMeasurements {
	duration := buf.DurationMS()
	m := &AudioMeasurements{
		RMSLevel:     refine.LevelOf(buf, 0, duration),
		PeakLevel:    refine.LinearToDb(peakOf(buf.Samples())),
		NoiseFloor:   refine.SilenceLevel,
		LoudestLevel: refine.SilenceLevel,
		DurationMS:   duration,
	}
	if duration == 0 {
		return m
	}

	quietest := math.Inf(1)
	for start := 0; start < duration; start += analysisIntervalMS {
		end := min(start+analysisIntervalMS, duration)
		// A short trailing interval would read quieter than it is
		if end-start < analysisIntervalMS && m.Intervals > 0 {
			break
		}

		level := refine.LevelOf(buf, start, end)
		quietest = math.Min(quietest, level)
		m.LoudestLevel = math.Max(m.LoudestLevel, level)
		m.Intervals++

		if levelFn != nil {
			levelFn(float64(end)/float64(duration), displayLevel(level))
		}
	}

	m.NoiseFloor = quietest
	m.DynamicRange = m.LoudestLevel - m.NoiseFloor
	return m
}

func peakOf(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(s))
	}
	return peak
}

// displayLevel clamps a level to the -60..0 dB range of the level meter
func displayLevel(db float64) float64 {
	return math.Max(-60, math.Min(0, db))
}
