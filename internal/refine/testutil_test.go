package refine

import (
	"math"
	"testing"

	"github.com/linuxmatters/voxtrim/internal/audio"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 16000

// section describes one stretch of synthetic audio
type section struct {
	DurationMS int
	ToneFreq   float64 // Sine frequency in Hz (0 = no tone)
	ToneLevel  float64 // Tone peak level in dBFS (0 = full scale)
	NoiseLevel float64 // White noise level in dBFS (0 = no noise)
}

func silence(ms int) section {
	return section{DurationMS: ms}
}

// tone is a full-scale 1kHz sine: exactly 10 periods per 10ms window at 16kHz
func tone(ms int) section {
	return section{DurationMS: ms, ToneFreq: 1000}
}

func toneAt(ms int, peakDB float64) section {
	return section{DurationMS: ms, ToneFreq: 1000, ToneLevel: peakDB}
}

// buildBuffer concatenates sections into a mono buffer at testSampleRate.
// Each tone starts at zero phase. Noise comes from a fixed-seed LCG so
// buffers are reproducible.
func buildBuffer(t *testing.T, sections ...section) *audio.Buffer {
	t.Helper()

	// Simple LCG random number generator for deterministic noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		// LCG parameters from Numerical Recipes
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	var samples []float64
	for _, s := range sections {
		n := s.DurationMS * testSampleRate / 1000

		toneAmp := 0.0
		if s.ToneFreq > 0 {
			toneAmp = DbToLinear(s.ToneLevel)
		}
		noiseAmp := 0.0
		if s.NoiseLevel < 0 {
			noiseAmp = DbToLinear(s.NoiseLevel)
		}

		for i := 0; i < n; i++ {
			var sample float64
			if toneAmp > 0 {
				sample += toneAmp * math.Sin(2.0*math.Pi*s.ToneFreq*float64(i)/testSampleRate)
			}
			if noiseAmp > 0 {
				sample += noiseAmp * nextRandom()
			}
			samples = append(samples, math.Max(-1, math.Min(1, sample)))
		}
	}

	buf, err := audio.NewBuffer(samples, testSampleRate)
	require.NoError(t, err)
	return buf
}
