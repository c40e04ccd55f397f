// ABOUTME: Spectrum sampler over the post-gain analysis tap
// ABOUTME: Reduces FFT magnitudes to a fixed-size visualizer bar profile
package player

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	fftSize  = 256
	freqBins = fftSize / 2

	// Frequency magnitudes map to a 0-255 scale over this dB range,
	// with exponential smoothing across reads.
	minDecibels = -100.0
	maxDecibels = -30.0
	smoothing   = 0.8

	minBarHeight = 2.0
	barScale     = 35.0
)

// Analyzer turns tap snapshots into visualizer bars. It runs on the
// UI redraw cadence and never mutates playback state.
type Analyzer struct {
	tap    *Tap
	fft    *fourier.FFT
	window []float64

	mu       sync.Mutex
	smoothed []float64
}

// NewAnalyzer creates an analyzer reading from the given tap.
func NewAnalyzer(tap *Tap) *Analyzer {
	window := make([]float64, fftSize)
	for i := range window {
		// Hann window
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	return &Analyzer{
		tap:      tap,
		fft:      fourier.NewFFT(fftSize),
		window:   window,
		smoothed: make([]float64, freqBins),
	}
}

// Bars samples the tap and reduces the magnitude bins to n display
// heights, each in [minBarHeight, barScale].
func (a *Analyzer) Bars(n int) []float64 {
	if n <= 0 {
		return nil
	}

	snap := a.tap.Snapshot()
	seq := make([]float64, fftSize)
	for i, s := range snap {
		seq[i] = float64(s) * a.window[i]
	}

	coeffs := a.fft.Coefficients(nil, seq)

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < freqBins; i++ {
		mag := cmplx.Abs(coeffs[i]) / fftSize
		a.smoothed[i] = smoothing*a.smoothed[i] + (1-smoothing)*mag
	}

	step := freqBins / n
	if step < 1 {
		step = 1
	}

	bars := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := i * step
		if idx >= freqBins {
			idx = freqBins - 1
		}
		h := byteScale(a.smoothed[idx]) / 255 * barScale
		if h < minBarHeight {
			h = minBarHeight
		}
		bars[i] = h
	}
	return bars
}

// byteScale maps a linear magnitude onto the 0-255 dB display range.
func byteScale(mag float64) float64 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := 255 * (db - minDecibels) / (maxDecibels - minDecibels)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
