// ABOUTME: TUI initialization and control channels
// ABOUTME: Wraps the bubbletea program and the UI-to-app command plumbing
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// VolumeMsg carries a volume/mute change out of the TUI.
type VolumeMsg struct {
	Volume int
	Muted  bool
}

// Control holds the channels the TUI uses to drive the session.
type Control struct {
	Connect    chan struct{}
	Disconnect chan struct{}
	StatusReq  chan struct{}
	ClearChat  chan struct{}
	Volume     chan VolumeMsg
	Quit       chan struct{}

	quitOnce sync.Once
}

// SignalQuit closes the quit channel so every listener sees it.
func (c *Control) SignalQuit() {
	c.quitOnce.Do(func() { close(c.Quit) })
}

// NewControl creates the control channel set.
func NewControl() *Control {
	return &Control{
		Connect:    make(chan struct{}, 1),
		Disconnect: make(chan struct{}, 1),
		StatusReq:  make(chan struct{}, 1),
		ClearChat:  make(chan struct{}, 1),
		Volume:     make(chan VolumeMsg, 10),
		Quit:       make(chan struct{}, 1),
	}
}

// Run starts the TUI program.
func Run(ctrl *Control, volume int) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl, volume), tea.WithAltScreen())
	return p, nil
}
