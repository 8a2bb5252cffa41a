// Package audio provides mono PCM buffers and WAV file input
package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoSamples is returned when a decoded file contains no audio frames
var ErrNoSamples = errors.New("audio contains no samples")

// Buffer is a read-only view of mono PCM samples normalised to full scale.
// Samples lie in [-1.0, 1.0]; 1.0 is the largest representable amplitude.
// A Buffer is never modified after construction, so it is safe to share
// between goroutines.
type Buffer struct {
	samples    []float64
	sampleRate int
}

// NewBuffer wraps samples in a Buffer. The slice is owned by the Buffer
// from this point on and must not be modified by the caller.
func NewBuffer(samples []float64, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	return &Buffer{samples: samples, sampleRate: sampleRate}, nil
}

// SampleRate returns the sample rate in Hz
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// NumSamples returns the total number of samples
func (b *Buffer) NumSamples() int {
	return len(b.samples)
}

// DurationMS returns the buffer length in whole milliseconds (rounded)
func (b *Buffer) DurationMS() int {
	return int(math.Round(1000 * float64(len(b.samples)) / float64(b.sampleRate)))
}

// SampleIndex converts a millisecond position to a sample index, clamped
// to [0, NumSamples].
func (b *Buffer) SampleIndex(ms int) int {
	if ms <= 0 {
		return 0
	}
	idx := int(int64(ms) * int64(b.sampleRate) / 1000)
	if idx > len(b.samples) {
		return len(b.samples)
	}
	return idx
}

// Slice returns the samples in [startMS, endMS) as a view of the backing
// array. Out-of-range bounds are clamped; an inverted range yields an
// empty slice. The capacity is capped so appends cannot write through.
func (b *Buffer) Slice(startMS, endMS int) []float64 {
	lo := b.SampleIndex(startMS)
	hi := b.SampleIndex(endMS)
	if hi < lo {
		hi = lo
	}
	return b.samples[lo:hi:hi]
}

// Samples returns the full sample view. Callers must treat it as read-only.
func (b *Buffer) Samples() []float64 {
	return b.samples[:len(b.samples):len(b.samples)]
}
