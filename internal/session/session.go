// ABOUTME: Session state machine for the Vision Assistant connection
// ABOUTME: Sole writer of connection status; owns the whole pipeline lifecycle
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Vision-Assistant/vision-go/internal/audio"
	"github.com/Vision-Assistant/vision-go/internal/client"
	"github.com/Vision-Assistant/vision-go/internal/config"
	"github.com/Vision-Assistant/vision-go/internal/player"
	"github.com/Vision-Assistant/vision-go/internal/protocol"
)

// Status is the connection lifecycle state.
type Status string

const (
	Disconnected Status = "disconnected"
	Connecting   Status = "connecting"
	Connected    Status = "connected"
)

// ErrAudioInit marks a failed audio subsystem init. It aborts the
// connect attempt before any transport I/O.
var ErrAudioInit = errors.New("audio init failed")

// Info is the single source of truth for connection UI state.
type Info struct {
	Status       Status
	ClientID     string
	Role         string
	Broadcaster  string
	TotalClients int
}

// Snapshot bundles the derived state the UI reads each tick.
type Snapshot struct {
	Info        Info
	AudioStatus string
	Stats       audio.Stats
	Volume      int
	Muted       bool
	FPS         int
	FrameCount  int
	LastFrame   time.Time
}

// DeviceFactory builds the output device. Injectable so tests can run
// the whole session against a fake device.
type DeviceFactory func(sampleRate int, gain *player.Gain, tap *player.Tap, log *zap.Logger) (player.Device, error)

// frameState tracks the video feed counters. FPS uses a fixed
// one-second window, not an exponential average.
type frameState struct {
	data        []byte
	count       int
	fps         int
	counter     int
	windowStart time.Time
	lastUpdate  time.Time
}

// Session owns all mutable pipeline state: connection info, the audio
// queue and scheduler, the conversation log, and frame counters.
type Session struct {
	cfg       config.Config
	log       *zap.Logger
	newDevice DeviceFactory

	conv     *Conversation
	queue    *audio.Queue
	gain     *player.Gain
	tap      *player.Tap
	analyzer *player.Analyzer

	mu          sync.Mutex
	info        Info
	conn        *client.Conn
	dev         player.Device
	sched       *player.Scheduler
	audioStatus string
	frame       frameState
}

// New creates a disconnected session.
func New(cfg config.Config, log *zap.Logger) *Session {
	return NewWithDevice(cfg, log, defaultDevice)
}

// NewWithDevice creates a session with a custom device factory.
func NewWithDevice(cfg config.Config, log *zap.Logger, newDevice DeviceFactory) *Session {
	tap := player.NewTap()
	return &Session{
		cfg:       cfg,
		log:       log,
		newDevice: newDevice,
		conv:      NewConversation(),
		queue:     audio.NewQueue(),
		gain:      player.NewGain(cfg.Volume),
		tap:       tap,
		analyzer:  player.NewAnalyzer(tap),
		info: Info{
			Status:      Disconnected,
			ClientID:    "Unknown",
			Role:        "None",
			Broadcaster: "None",
		},
		audioStatus: player.StatusDisabled,
	}
}

func defaultDevice(sampleRate int, gain *player.Gain, tap *player.Tap, log *zap.Logger) (player.Device, error) {
	return player.NewOtoDevice(sampleRate, gain, tap, log)
}

// Connect initializes audio, opens the transport, and negotiates the
// receiver role. No-op when already connected. Audio init failure
// short-circuits back to Disconnected with no transport I/O attempted.
func (s *Session) Connect() error {
	s.mu.Lock()
	if s.info.Status == Connected {
		s.mu.Unlock()
		return nil
	}
	s.info.Status = Connecting
	s.mu.Unlock()

	if err := s.initAudio(); err != nil {
		s.setStatus(Disconnected)
		s.conv.Append(SenderSystem, "Connection failed: "+err.Error())
		s.log.Error("audio init failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrAudioInit, err)
	}

	conn, err := client.Dial(s.cfg.ServerURI, s.log)
	if err != nil {
		s.setStatus(Disconnected)
		s.conv.Append(SenderSystem, "Connection failed: "+err.Error())
		s.log.Error("connect failed", zap.Error(err))
		return fmt.Errorf("connect: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.info.Status = Connected
	s.mu.Unlock()

	if err := conn.SendJSON(protocol.NewSetRole("receiver")); err != nil {
		s.log.Warn("set_role send failed", zap.Error(err))
	}
	if err := conn.SendJSON(protocol.NewGetStatus()); err != nil {
		s.log.Warn("get_status send failed", zap.Error(err))
	}

	go s.eventLoop(conn)

	return nil
}

// initAudio brings up the device, scheduler, and gain stage. Must
// succeed before the transport opens.
func (s *Session) initAudio() error {
	if !s.cfg.EnableAudio {
		s.setAudioStatus(player.StatusDisabled)
		return fmt.Errorf("audio playback disabled")
	}

	s.mu.Lock()
	ready := s.dev != nil
	s.mu.Unlock()
	if ready {
		// Device survives reconnects; just refresh the scheduler.
		s.resetScheduler()
		return nil
	}

	dev, err := s.newDevice(s.cfg.SampleRate, s.gain, s.tap, s.log)
	if err != nil {
		s.setAudioStatus("Error: " + err.Error())
		return err
	}

	s.mu.Lock()
	s.dev = dev
	s.sched = player.NewScheduler(s.queue, dev, s.gain, s.log, s.setAudioStatus)
	s.mu.Unlock()

	s.setAudioStatus(player.StatusReady)
	return nil
}

// resetScheduler builds a fresh scheduler over the existing device,
// so a reconnect starts with a clean cursor and drain guard.
func (s *Session) resetScheduler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched != nil {
		s.sched.Reset()
	}
	s.sched = player.NewScheduler(s.queue, s.dev, s.gain, s.log, s.setAudioStatus)
	s.audioStatus = player.StatusReady
}

// eventLoop consumes the single inbound event stream until the
// transport reports closed.
func (s *Session) eventLoop(conn *client.Conn) {
	for ev := range conn.Events() {
		switch ev.Kind {
		case client.EventMessage:
			s.dispatch(ev.Data)
		case client.EventClosed:
			s.handleClose(ev.Code, ev.Reason)
			return
		}
	}
}

// handleClose resets the pipeline after any transport close. Non-1000
// codes surface a diagnostic in the conversation log.
func (s *Session) handleClose(code int, reason string) {
	s.mu.Lock()
	s.conn = nil
	s.info.Status = Disconnected
	sched := s.sched
	s.mu.Unlock()

	if sched != nil {
		sched.Reset()
	}

	if !client.NormalClose(code) {
		s.log.Warn("abnormal close", zap.Int("code", code), zap.String("reason", reason))
		s.conv.Append(SenderSystem, fmt.Sprintf("Connection closed unexpectedly: %s", reason))
	}
}

// Disconnect sends a best-effort notice, closes the transport, and
// forces Disconnected. The queue is discarded: stale audio from a dead
// session must never play after reconnect.
func (s *Session) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	sched := s.sched
	s.mu.Unlock()

	if conn != nil {
		if err := conn.SendJSON(protocol.NewDisconnect()); err != nil {
			s.log.Debug("disconnect notice failed", zap.Error(err))
		}
		conn.Close()
	}

	if sched != nil {
		sched.Reset()
	}

	s.setStatus(Disconnected)
}

// Close releases the session, including the output device.
func (s *Session) Close() {
	s.Disconnect()

	s.mu.Lock()
	dev := s.dev
	s.dev = nil
	s.mu.Unlock()

	if dev != nil {
		dev.Close()
	}
}

// RequestStatus asks the server for a fresh status broadcast.
func (s *Session) RequestStatus() {
	s.mu.Lock()
	conn := s.conn
	connected := s.info.Status == Connected
	s.mu.Unlock()

	if conn == nil || !connected {
		return
	}
	if err := conn.SendJSON(protocol.NewGetStatus()); err != nil {
		s.log.Warn("get_status send failed", zap.Error(err))
	}
}

// SetVolume updates the shared gain stage immediately.
func (s *Session) SetVolume(volume int) {
	s.gain.SetVolume(volume)
}

// SetMuted toggles the gain stage mute.
func (s *Session) SetMuted(muted bool) {
	s.gain.SetMuted(muted)
}

// ClearChat empties the conversation log.
func (s *Session) ClearChat() {
	s.conv.Clear()
}

// Conversation returns the log for reading.
func (s *Session) Conversation() *Conversation {
	return s.conv
}

// Bars returns the current visualizer bar profile.
func (s *Session) Bars() []float64 {
	return s.analyzer.Bars(s.cfg.VisualizerBars)
}

// Info returns current connection info.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Snapshot returns the derived state for one UI tick.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Info:        s.info,
		AudioStatus: s.audioStatus,
		Stats:       s.queue.Stats(),
		Volume:      s.gain.Volume(),
		Muted:       s.gain.Muted(),
		FPS:         s.frame.fps,
		FrameCount:  s.frame.count,
		LastFrame:   s.frame.lastUpdate,
	}
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	s.info.Status = status
	s.mu.Unlock()
}

func (s *Session) setAudioStatus(status string) {
	s.mu.Lock()
	s.audioStatus = status
	s.mu.Unlock()
}
