// ABOUTME: Shared gain stage and post-gain analysis tap
// ABOUTME: Single-writer volume, multi-reader; tap feeds the spectrum sampler
package player

import (
	"sync"
	"sync/atomic"
)

// Gain is the shared volume stage. Volume changes take effect on the
// next block the device writes, including buffers already in flight.
type Gain struct {
	volume atomic.Int32 // 0-100
	muted  atomic.Bool
}

// NewGain creates a gain stage at the given volume.
func NewGain(volume int) *Gain {
	g := &Gain{}
	g.SetVolume(volume)
	return g
}

// SetVolume clamps and stores the volume (0-100).
func (g *Gain) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	g.volume.Store(int32(volume))
}

// Volume returns the current volume.
func (g *Gain) Volume() int {
	return int(g.volume.Load())
}

// SetMuted sets mute state.
func (g *Gain) SetMuted(muted bool) {
	g.muted.Store(muted)
}

// Muted returns mute state.
func (g *Gain) Muted() bool {
	return g.muted.Load()
}

// Multiplier returns the linear gain factor.
func (g *Gain) Multiplier() float32 {
	if g.muted.Load() {
		return 0
	}
	return float32(g.volume.Load()) / 100.0
}

// Tap is a ring of the most recent post-gain samples, read by the
// spectrum sampler. It holds exactly one FFT frame.
type Tap struct {
	mu   sync.Mutex
	ring [fftSize]float32
	pos  int
}

// NewTap creates an empty analysis tap.
func NewTap() *Tap {
	return &Tap{}
}

// Push appends samples, overwriting the oldest.
func (t *Tap) Push(samples []float32) {
	t.mu.Lock()
	for _, s := range samples {
		t.ring[t.pos] = s
		t.pos = (t.pos + 1) % fftSize
	}
	t.mu.Unlock()
}

// Snapshot returns the ring contents oldest-first. Between buffers it
// simply holds whatever was last on the graph, silence included.
func (t *Tap) Snapshot() []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]float32, fftSize)
	for i := 0; i < fftSize; i++ {
		out[i] = t.ring[(t.pos+i)%fftSize]
	}
	return out
}
