// ABOUTME: Biquad lowpass filter for the playback chain
// ABOUTME: Attenuates high-frequency artifacts from PCM quantization
package player

import "math"

// biquad is a direct form I second-order IIR section. A fresh filter
// is built per buffer, so filter state never carries across chunks.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// newLowpass builds a lowpass biquad from the RBJ cookbook formulas.
func newLowpass(sampleRate int, cutoff, q float64) *biquad {
	nyquist := float64(sampleRate) / 2
	if cutoff >= nyquist {
		cutoff = nyquist * 0.99
	}

	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return &biquad{
		b0: (1 - cosw0) / 2 / a0,
		b1: (1 - cosw0) / a0,
		b2: (1 - cosw0) / 2 / a0,
		a1: -2 * cosw0 / a0,
		a2: (1 - alpha) / a0,
	}
}

// Process filters the samples in place.
func (f *biquad) Process(samples []float32) {
	for i, s := range samples {
		x := float64(s)
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y

		samples[i] = float32(y)
	}
}
