package refine

import (
	"math"

	"github.com/linuxmatters/voxtrim/internal/audio"
)

// SilenceLevel is returned by LevelOf for empty or all-zero ranges.
// It stands in for -Inf so thresholds derived from it stay finite.
const SilenceLevel = -120.0

// LevelOf returns the RMS level of [startMS, endMS) in dBFS.
// Empty and digitally silent ranges return SilenceLevel.
func LevelOf(buf *audio.Buffer, startMS, endMS int) float64 {
	return LinearToDb(rmsOf(buf.Slice(startMS, endMS)))
}

// rmsOf returns the root-mean-square amplitude relative to full scale.
// An empty slice has zero energy.
func rmsOf(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// silentAt reports whether [startMS, endMS) is at or below thresholdDB.
// The comparison is made on linear amplitude so that zero-energy windows are
// silent against any threshold, including one derived from SilenceLevel.
func silentAt(buf *audio.Buffer, startMS, endMS int, thresholdDB float64) bool {
	return rmsOf(buf.Slice(startMS, endMS)) <= DbToLinear(thresholdDB)
}

// DbToLinear converts a decibel value to linear amplitude
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDb converts linear amplitude to decibels, floored at SilenceLevel
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return SilenceLevel
	}
	db := 20.0 * math.Log10(linear)
	if db < SilenceLevel {
		return SilenceLevel
	}
	return db
}
