package audio

import "math"

// Mains hum notch defaults
const (
	DefaultHumHarmonics = 4    // Fundamental + 3 harmonics (50, 100, 150, 200 Hz)
	DefaultHumQ         = 30.0 // Higher = narrower notch, less impact on voice
)

// biquad is a second-order IIR section in transposed direct form II
type biquad struct {
	b0, b1, b2, a1, a2 float64
	z1, z2             float64
}

// newNotch builds an RBJ cookbook band-reject section centred on freq
func newNotch(freq, q float64, sampleRate int) *biquad {
	w0 := 2 * math.Pi * freq / float64(sampleRate)
	alpha := math.Sin(w0) / (2 * q)
	cosW0 := math.Cos(w0)
	a0 := 1 + alpha

	return &biquad{
		b0: 1 / a0,
		b1: -2 * cosW0 / a0,
		b2: 1 / a0,
		a1: -2 * cosW0 / a0,
		a2: (1 - alpha) / a0,
	}
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

// RemoveHum returns a new Buffer with notches at the mains frequency and
// its harmonics. Harmonics at or above Nyquist are skipped. The receiver is
// not modified. A non-positive frequency returns the receiver unchanged.
func (b *Buffer) RemoveHum(mainsHz float64, harmonics int, q float64) *Buffer {
	if mainsHz <= 0 || harmonics < 1 || len(b.samples) == 0 {
		return b
	}
	if q <= 0 {
		q = DefaultHumQ
	}

	nyquist := float64(b.sampleRate) / 2
	var chain []*biquad
	for h := 1; h <= harmonics; h++ {
		freq := mainsHz * float64(h)
		if freq >= nyquist {
			break
		}
		chain = append(chain, newNotch(freq, q, b.sampleRate))
	}
	if len(chain) == 0 {
		return b
	}

	out := make([]float64, len(b.samples))
	for i, x := range b.samples {
		for _, section := range chain {
			x = section.process(x)
		}
		out[i] = x
	}

	return &Buffer{samples: out, sampleRate: b.sampleRate}
}
