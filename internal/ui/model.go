// ABOUTME: Bubbletea model for the Vision Assistant client TUI
// ABOUTME: Renders connection, video, audio, and conversation state
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const chatLines = 10

// ChatLine is one rendered conversation entry.
type ChatLine struct {
	Sender  string
	Content string
}

// StatusMsg pushes fresh session state into the TUI.
type StatusMsg struct {
	ConnStatus   string
	ClientID     string
	Role         string
	Broadcaster  string
	TotalClients int

	AudioStatus string
	Played      int
	Errors      int
	Pending     int
	Volume      int
	Muted       bool
	Bars        []float64

	FPS        int
	FrameCount int
	LastFrame  time.Time

	Messages []ChatLine
}

// Model represents the TUI state.
type Model struct {
	ctrl *Control

	connStatus   string
	clientID     string
	role         string
	broadcaster  string
	totalClients int

	audioStatus string
	played      int
	errors      int
	pending     int
	volume      int
	muted       bool
	bars        []float64

	fps        int
	frameCount int
	lastFrame  time.Time

	messages []ChatLine

	width  int
	height int
}

// NewModel creates the initial TUI model.
func NewModel(ctrl *Control, volume int) Model {
	return Model{
		ctrl:        ctrl,
		connStatus:  "disconnected",
		clientID:    "Unknown",
		role:        "None",
		broadcaster: "None",
		audioStatus: "Disabled",
		volume:      volume,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.SignalQuit()
		return m, tea.Quit
	case "c":
		signal(m.ctrl.Connect)
	case "x":
		signal(m.ctrl.Disconnect)
	case "s":
		signal(m.ctrl.StatusReq)
	case "L":
		signal(m.ctrl.ClearChat)
	case "m":
		m.muted = !m.muted
		m.pushVolume()
	case "up":
		m.volume += 5
		if m.volume > 100 {
			m.volume = 100
		}
		m.pushVolume()
	case "down":
		m.volume -= 5
		if m.volume < 0 {
			m.volume = 0
		}
		m.pushVolume()
	}

	return m, nil
}

func (m Model) pushVolume() {
	select {
	case m.ctrl.Volume <- VolumeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// applyStatus updates model state from a status push.
func (m *Model) applyStatus(msg StatusMsg) {
	m.connStatus = msg.ConnStatus
	m.clientID = msg.ClientID
	m.role = msg.Role
	m.broadcaster = msg.Broadcaster
	m.totalClients = msg.TotalClients
	m.audioStatus = msg.AudioStatus
	m.played = msg.Played
	m.errors = msg.Errors
	m.pending = msg.Pending
	m.volume = msg.Volume
	m.muted = msg.Muted
	m.bars = msg.Bars
	m.fps = msg.FPS
	m.frameCount = msg.FrameCount
	m.lastFrame = msg.LastFrame
	m.messages = msg.Messages
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderVideo()
	s += m.renderAudio()
	s += m.renderChat()
	s += m.renderHelp()

	return s
}

func (m Model) renderHeader() string {
	return fmt.Sprintf(`┌─ Vision Assistant ───────────────────────────────────┐
│ Status: %-45s│
│ Client: %-18s Role: %-20s│
│ Broadcaster: %-13s Clients: %-17d│
├──────────────────────────────────────────────────────┤
`, m.connStatus, truncate(m.clientID, 18), truncate(m.role, 20),
		truncate(m.broadcaster, 13), m.totalClients)
}

func (m Model) renderVideo() string {
	last := "never"
	if !m.lastFrame.IsZero() {
		last = m.lastFrame.Format("15:04:05")
	}
	return fmt.Sprintf("│ Video:  %d frames  %d fps  last %-21s│\n", m.frameCount, m.fps, last)
}

func (m Model) renderAudio() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	return fmt.Sprintf("│ Audio:  %-45s│\n"+
		"│ Volume: [%s] %3d%%%-28s│\n"+
		"│ Bars:   %-45s│\n"+
		"│ Stats:  Played: %-5d Errors: %-5d Queue: %-9d│\n"+
		"├──────────────────────────────────────────────────────┤\n",
		truncate(m.audioStatus, 45),
		renderBar(m.volume, 100, 10), m.volume, muteIcon,
		renderSpectrum(m.bars),
		m.played, m.errors, m.pending)
}

func (m Model) renderChat() string {
	s := "│ Conversation:                                        │\n"

	start := 0
	if len(m.messages) > chatLines {
		start = len(m.messages) - chatLines
	}
	shown := m.messages[start:]

	if len(shown) == 0 {
		s += "│   (no messages)                                      │\n"
	}
	for _, line := range shown {
		s += fmt.Sprintf("│ %-7s %-44s │\n",
			truncate(line.Sender, 7), truncate(line.Content, 44))
	}
	return s
}

func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ c:Connect x:Disconnect s:Status ↑/↓:Volume m:Mute   │
│ L:Clear chat  q:Quit                                 │
└──────────────────────────────────────────────────────┘
`
}

// renderSpectrum maps bar heights (2-35) onto block glyphs.
func renderSpectrum(bars []float64) string {
	glyphs := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, h := range bars {
		idx := int((h - 2) / 33 * float64(len(glyphs)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(glyphs) {
			idx = len(glyphs) - 1
		}
		b.WriteRune(glyphs[idx])
	}
	return b.String()
}

func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	if length <= 3 {
		return s[:length]
	}
	return s[:length-3] + "..."
}
