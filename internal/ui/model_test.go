// ABOUTME: Tests for the TUI model
// ABOUTME: Covers key handling, status application, and render helpers
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "up" {
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	if s == "down" {
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestVolumeKeysClamp(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl, 95)

	for i := 0; i < 4; i++ {
		next, _ := m.handleKey(keyMsg("up"))
		m = next.(Model)
		drainVolume(ctrl)
	}
	if m.volume != 100 {
		t.Errorf("expected clamp at 100, got %d", m.volume)
	}

	m.volume = 5
	for i := 0; i < 4; i++ {
		next, _ := m.handleKey(keyMsg("down"))
		m = next.(Model)
		drainVolume(ctrl)
	}
	if m.volume != 0 {
		t.Errorf("expected clamp at 0, got %d", m.volume)
	}
}

func drainVolume(ctrl *Control) {
	select {
	case <-ctrl.Volume:
	default:
	}
}

func TestMuteKeyPushesVolume(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl, 50)

	next, _ := m.handleKey(keyMsg("m"))
	m = next.(Model)

	if !m.muted {
		t.Error("expected muted after m key")
	}
	select {
	case msg := <-ctrl.Volume:
		if !msg.Muted || msg.Volume != 50 {
			t.Errorf("unexpected volume push: %+v", msg)
		}
	default:
		t.Fatal("expected a volume push on the control channel")
	}
}

func TestConnectKeySignals(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl, 50)

	m.handleKey(keyMsg("c"))

	select {
	case <-ctrl.Connect:
	default:
		t.Fatal("expected a connect signal")
	}
}

func TestQuitKeyClosesChannel(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl, 50)

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Fatal("expected quit channel closed")
	}

	// Closing twice must not panic.
	ctrl.SignalQuit()
}

func TestApplyStatus(t *testing.T) {
	m := NewModel(NewControl(), 50)

	m.applyStatus(StatusMsg{
		ConnStatus:  "connected",
		ClientID:    "c1",
		Role:        "Receiver",
		AudioStatus: "Playing",
		Volume:      70,
		Pending:     2,
	})

	if m.connStatus != "connected" || m.clientID != "c1" || m.role != "Receiver" {
		t.Errorf("connection fields not applied: %+v", m)
	}
	if m.audioStatus != "Playing" || m.volume != 70 || m.pending != 2 {
		t.Errorf("audio fields not applied: %+v", m)
	}
}

func TestRenderSpectrumBounds(t *testing.T) {
	// Floor and ceiling heights map to the first and last glyphs.
	s := renderSpectrum([]float64{2, 35})
	runes := []rune(s)
	if len(runes) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(runes))
	}
	if runes[0] != '▁' {
		t.Errorf("floor height should render the lowest glyph, got %c", runes[0])
	}
	if runes[1] != '█' {
		t.Errorf("ceiling height should render the tallest glyph, got %c", runes[1])
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(50, 100, 10); strings.Count(got, "█") != 5 {
		t.Errorf("expected 5 filled cells, got %q", got)
	}
	if got := renderBar(0, 100, 10); strings.Count(got, "█") != 0 {
		t.Errorf("expected empty bar, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("short strings pass through, got %q", got)
	}
	if got := truncate("a very long string", 10); got != "a very ..." {
		t.Errorf("unexpected truncation: %q", got)
	}
	if len(truncate("abcdef", 3)) != 3 {
		t.Errorf("tiny lengths still truncate")
	}
}
