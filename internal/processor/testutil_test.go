package processor

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Gap is a stretch of digital silence in generated audio
type Gap struct {
	Start    float64 // Start time in seconds
	Duration float64 // Duration in seconds
}

// TestAudioOptions configures the synthetic audio to generate
type TestAudioOptions struct {
	DurationSecs float64 // Total duration in seconds
	SampleRate   int     // Sample rate (default: 16000)
	ToneFreq     float64 // Sine wave frequency in Hz (0 = no tone)
	ToneLevel    float64 // Tone peak level in dBFS (e.g., -23.0)
	NoiseLevel   float64 // White noise level in dBFS (0 = no noise, -60 = quiet noise)
	SilenceGaps  []Gap
}

// generateTestAudio creates a synthetic mono 16-bit WAV file in dir.
// The generated audio can include a sine wave tone, white noise, and silence gaps.
func generateTestAudio(t *testing.T, dir, name string, opts TestAudioOptions) string {
	t.Helper()

	// Set defaults
	if opts.SampleRate == 0 {
		opts.SampleRate = 16000
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 5.0
	}

	totalSamples := int(opts.DurationSecs * float64(opts.SampleRate))
	samples := make([]int16, totalSamples)

	// Convert dBFS to linear amplitude (0 dBFS = 1.0 = max int16)
	toneAmp := 0.0
	if opts.ToneFreq > 0 && opts.ToneLevel < 0 {
		toneAmp = math.Pow(10.0, opts.ToneLevel/20.0)
	}

	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}

	inGap := func(i int) bool {
		for _, g := range opts.SilenceGaps {
			start := int(g.Start * float64(opts.SampleRate))
			end := int((g.Start + g.Duration) * float64(opts.SampleRate))
			if i >= start && i < end {
				return true
			}
		}
		return false
	}

	// Simple LCG random number generator for deterministic noise
	// (avoids importing math/rand and seeding complexity)
	rngState := uint32(12345)
	nextRandom := func() float64 {
		// LCG parameters from Numerical Recipes
		rngState = rngState*1664525 + 1013904223
		// Convert to -1.0 to 1.0 range
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	maxInt16 := float64(math.MaxInt16)

	for i := 0; i < totalSamples; i++ {
		if inGap(i) {
			continue
		}

		var sample float64
		if toneAmp > 0 {
			t := float64(i) / float64(opts.SampleRate)
			sample += toneAmp * math.Sin(2.0*math.Pi*opts.ToneFreq*t)
		}
		if noiseAmp > 0 {
			sample += noiseAmp * nextRandom()
		}

		// Clamp to [-1, 1] and convert to int16
		sample = math.Max(-1.0, math.Min(1.0, sample))
		samples[i] = int16(sample * maxInt16)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test audio: %v", err)
	}

	if err := writeWAV(f, samples, opts.SampleRate); err != nil {
		f.Close()
		t.Fatalf("failed to write WAV file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close test audio: %v", err)
	}

	return path
}

// writeWAV writes a mono 16-bit WAV file with a canonical 44-byte header
func writeWAV(f *os.File, samples []int16, sampleRate int) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)

	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := len(samples) * 2
	fileSize := 36 + dataSize // Total file size minus 8 bytes for RIFF header

	header := []any{
		[]byte("RIFF"), uint32(fileSize), []byte("WAVE"),
		[]byte("fmt "), uint32(16), uint16(1), uint16(numChannels),
		uint32(sampleRate), uint32(byteRate), uint16(blockAlign), uint16(bitsPerSample),
		[]byte("data"), uint32(dataSize),
	}
	for _, field := range header {
		if err := binary.Write(f, binary.LittleEndian, field); err != nil {
			return err
		}
	}

	return binary.Write(f, binary.LittleEndian, samples)
}
