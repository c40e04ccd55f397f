// ABOUTME: Tests for the gain stage and analysis tap
// ABOUTME: Covers volume clamping, mute, and ring ordering
package player

import "testing"

func TestGainClamping(t *testing.T) {
	g := NewGain(50)

	g.SetVolume(150)
	if g.Volume() != 100 {
		t.Errorf("expected clamp to 100, got %d", g.Volume())
	}

	g.SetVolume(-10)
	if g.Volume() != 0 {
		t.Errorf("expected clamp to 0, got %d", g.Volume())
	}
}

func TestGainMultiplier(t *testing.T) {
	g := NewGain(50)
	if m := g.Multiplier(); m != 0.5 {
		t.Errorf("expected 0.5, got %f", m)
	}

	g.SetMuted(true)
	if m := g.Multiplier(); m != 0 {
		t.Errorf("expected 0 when muted, got %f", m)
	}

	g.SetMuted(false)
	if m := g.Multiplier(); m != 0.5 {
		t.Errorf("expected 0.5 after unmute, got %f", m)
	}
}

func TestTapSnapshotOrder(t *testing.T) {
	tap := NewTap()

	// Overfill by half a ring so the oldest half is overwritten
	first := make([]float32, fftSize)
	for i := range first {
		first[i] = 1
	}
	second := make([]float32, fftSize/2)
	for i := range second {
		second[i] = 2
	}

	tap.Push(first)
	tap.Push(second)

	snap := tap.Snapshot()
	if len(snap) != fftSize {
		t.Fatalf("expected %d samples, got %d", fftSize, len(snap))
	}

	for i := 0; i < fftSize/2; i++ {
		if snap[i] != 1 {
			t.Fatalf("expected oldest half = 1 at %d, got %f", i, snap[i])
		}
	}
	for i := fftSize / 2; i < fftSize; i++ {
		if snap[i] != 2 {
			t.Fatalf("expected newest half = 2 at %d, got %f", i, snap[i])
		}
	}
}
