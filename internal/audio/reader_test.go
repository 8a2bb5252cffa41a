package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestWAV writes interleaved 16-bit PCM to a temporary WAV file
func writeTestWAV(t *testing.T, data []int, sampleRate, channels int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	err = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	return path
}

func TestOpenAudioFileMono(t *testing.T) {
	data := make([]int, 16000)
	for i := range data {
		if i%2 == 0 {
			data[i] = 16384
		} else {
			data[i] = -16384
		}
	}
	path := writeTestWAV(t, data, 16000, 1)

	buf, meta, err := OpenAudioFile(path)
	require.NoError(t, err)

	assert.Equal(t, 16000, buf.SampleRate())
	assert.Equal(t, 16000, buf.NumSamples())
	assert.Equal(t, 1000, buf.DurationMS())
	assert.InDelta(t, 0.5, buf.Samples()[0], 1e-9)
	assert.InDelta(t, -0.5, buf.Samples()[1], 1e-9)

	assert.Equal(t, 1, meta.Channels)
	assert.Equal(t, 16, meta.BitDepth)
	assert.Equal(t, "s16", meta.SampleFmt)
	assert.InDelta(t, 1.0, meta.Duration, 1e-9)
}

func TestOpenAudioFileDownmixesStereo(t *testing.T) {
	// Left at half scale, right silent
	data := make([]int, 2*8000)
	for i := 0; i < len(data); i += 2 {
		data[i] = 16384
	}
	path := writeTestWAV(t, data, 8000, 2)

	buf, meta, err := OpenAudioFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, meta.Channels)
	assert.Equal(t, 8000, buf.NumSamples())
	for _, s := range buf.Slice(0, 10) {
		assert.InDelta(t, 0.25, s, 1e-9)
	}
}

func TestOpenAudioFileErrors(t *testing.T) {
	_, _, err := OpenAudioFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)

	bogus := filepath.Join(t.TempDir(), "bogus.wav")
	require.NoError(t, os.WriteFile(bogus, []byte("definitely not RIFF data"), 0o644))
	_, _, err = OpenAudioFile(bogus)
	assert.Error(t, err)
}

// writeFloatWAV writes mono 32-bit IEEE float samples to a temporary WAV file
func writeFloatWAV(t *testing.T, samples []float32, sampleRate int) string {
	t.Helper()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(int32(math.Float32bits(s)))
	}

	path := filepath.Join(t.TempDir(), "float.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 32, 1, 3)
	err = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 32,
	})
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	return path
}

func TestOpenAudioFileFloat32(t *testing.T) {
	const sampleRate = 16000
	samples := make([]float32, sampleRate)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*1000*float64(i)/sampleRate))
	}
	path := writeFloatWAV(t, samples, sampleRate)

	buf, meta, err := OpenAudioFile(path)
	require.NoError(t, err)

	assert.Equal(t, "flt32", meta.SampleFmt)
	assert.Equal(t, 32, meta.BitDepth)
	require.Equal(t, len(samples), buf.NumSamples())

	var peak, sumSq float64
	for i, s := range buf.Samples() {
		assert.InDelta(t, float64(samples[i]), s, 1e-7)
		peak = math.Max(peak, math.Abs(s))
		sumSq += s * s
	}
	assert.InDelta(t, 0.5, peak, 1e-3)
	assert.InDelta(t, 0.5/math.Sqrt2, math.Sqrt(sumSq/float64(len(samples))), 1e-3)
}

func TestSampleConverter(t *testing.T) {
	float, err := sampleConverter(formatIEEEFloat, 32)
	require.NoError(t, err)
	assert.InDelta(t, -0.25, float(int(int32(math.Float32bits(-0.25)))), 1e-9)

	_, err = sampleConverter(formatIEEEFloat, 64)
	assert.Error(t, err)

	pcm24, err := sampleConverter(formatPCM, 24)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, pcm24(-8388608), 1e-9)
}

func TestDownmixUnsigned8Bit(t *testing.T) {
	convert, err := sampleConverter(formatPCM, 8)
	require.NoError(t, err)
	out := downmix([]int{128, 255, 0}, 1, convert)
	require.Len(t, out, 3)
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 127.0/128.0, out[1], 1e-9)
	assert.InDelta(t, -1.0, out[2], 1e-9)
}
