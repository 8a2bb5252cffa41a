package audio

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	SampleFmt  string
	BitDepth   int
}

// OpenAudioFile decodes an integer PCM or 32-bit float WAV file into a mono
// Buffer.
// Multi-channel input is downmixed by averaging channels, so the returned
// Buffer is always single-channel. Metadata describes the source file.
func OpenAudioFile(filename string) (*Buffer, *Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, nil, fmt.Errorf("not a valid WAV file: %s", filename)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		return nil, nil, fmt.Errorf("invalid channel count %d in file: %s", channels, filename)
	}
	if len(pcm.Data) < channels {
		return nil, nil, fmt.Errorf("%s: %w", filename, ErrNoSamples)
	}

	bitDepth := int(decoder.BitDepth)
	if pcm.SourceBitDepth > 0 {
		bitDepth = pcm.SourceBitDepth
	}
	if bitDepth <= 0 {
		return nil, nil, fmt.Errorf("unsupported bit depth %d in file: %s", bitDepth, filename)
	}

	format := int(decoder.WavAudioFormat)
	convert, err := sampleConverter(format, bitDepth)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	mono := downmix(pcm.Data, channels, convert)

	buf, err := NewBuffer(mono, pcm.Format.SampleRate)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}

	metadata := &Metadata{
		Duration:   float64(len(mono)) / float64(pcm.Format.SampleRate),
		SampleRate: pcm.Format.SampleRate,
		Channels:   channels,
		SampleFmt:  sampleFormatName(format, bitDepth),
		BitDepth:   bitDepth,
	}

	return buf, metadata, nil
}

// WAV format tags
const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// sampleConverter returns the function that maps one decoded sample to
// [-1.0, 1.0]. The WAV decoder hands float samples back as the raw 32-bit
// pattern, so those are reinterpreted rather than scaled.
func sampleConverter(format, bitDepth int) (func(int) float64, error) {
	if format == formatIEEEFloat {
		if bitDepth != 32 {
			return nil, fmt.Errorf("unsupported float bit depth %d", bitDepth)
		}
		return func(v int) float64 {
			return float64(math.Float32frombits(uint32(v)))
		}, nil
	}

	scale := fullScale(bitDepth)
	if bitDepth == 8 {
		// 8-bit PCM is unsigned
		return func(v int) float64 { return (float64(v) - 128) / scale }, nil
	}
	return func(v int) float64 { return float64(v) / scale }, nil
}

// fullScale returns the magnitude of the most negative integer sample for
// a bit depth, i.e. 32768 for 16-bit.
func fullScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

// downmix averages interleaved channels into normalised mono samples
func downmix(data []int, channels int, convert func(int) float64) []float64 {
	frames := len(data) / channels
	out := make([]float64, frames)

	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += convert(data[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// sampleFormatName describes the WAV sample encoding in FFmpeg's naming style
func sampleFormatName(format, bitDepth int) string {
	switch {
	case format == formatPCM && bitDepth == 8:
		return "u8"
	case format == formatPCM:
		return fmt.Sprintf("s%d", bitDepth)
	case format == formatIEEEFloat:
		return fmt.Sprintf("flt%d", bitDepth)
	default:
		return fmt.Sprintf("fmt%d/%d", format, bitDepth)
	}
}
