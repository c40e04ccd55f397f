// ABOUTME: Inbound event dispatcher
// ABOUTME: Classifies protocol messages by type tag and routes each to one handler
package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Vision-Assistant/vision-go/internal/audio"
	"github.com/Vision-Assistant/vision-go/internal/protocol"
)

// dispatch classifies one raw message and applies exactly one side
// effect. A malformed message is reported as a system entry and never
// crashes the loop; one bad message must not affect the next.
func (s *Session) dispatch(raw []byte) {
	var msg protocol.Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.log.Warn("message parse failed", zap.Error(err))
		s.conv.Append(SenderSystem, "Error parsing message from server")
		return
	}

	switch msg.Type {
	case protocol.TypeRoleConfirmed:
		s.mu.Lock()
		s.info.Role = msg.Role
		s.mu.Unlock()
		s.conv.Append(SenderSystem, "Role confirmed: "+msg.Role)

	case protocol.TypeRoleError:
		s.log.Warn("role error", zap.String("message", msg.Message))
		s.conv.Append(SenderSystem, "Role error: "+msg.Message)

	case protocol.TypeFrame:
		s.displayFrame(msg.Data)

	case protocol.TypeAI:
		s.conv.Append(SenderAI, msg.Data)

	case protocol.TypeUser:
		s.conv.Append(SenderUser, msg.Data)

	case protocol.TypeAudio:
		s.enqueueAudio(msg)

	case protocol.TypeBroadcasterChanged:
		s.mu.Lock()
		s.info.Broadcaster = msg.BroadcasterID
		s.mu.Unlock()
		s.conv.Append(SenderSystem, "New broadcaster: "+msg.BroadcasterID)

	case protocol.TypeStatus:
		s.applyStatus(msg)

	case protocol.TypeError:
		s.log.Warn("server error", zap.String("data", msg.Data))
		s.conv.Append(SenderSystem, "Server error: "+msg.Data)

	default:
		s.log.Info("unknown message type", zap.String("type", msg.Type))
		s.conv.Append(SenderSystem, "Unknown message type: "+msg.Type)
	}
}

// enqueueAudio decodes the base64 payload and hands the chunk to the
// scheduler. Returns immediately; the scheduler kicks its own drain.
func (s *Session) enqueueAudio(msg protocol.Inbound) {
	s.mu.Lock()
	sched := s.sched
	s.mu.Unlock()

	if sched == nil || !s.cfg.EnableAudio {
		return
	}

	payload, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		s.log.Warn("audio payload decode failed", zap.Error(err))
		s.conv.Append(SenderSystem, fmt.Sprintf("Error handling message: %v", err))
		return
	}

	format := msg.Format
	if format == "" {
		format = audio.FormatPCM16
	}
	sampleRate := msg.SampleRate
	if sampleRate == 0 {
		sampleRate = s.cfg.SampleRate
	}

	sched.Enqueue(audio.Chunk{
		Payload:    payload,
		Format:     format,
		SampleRate: sampleRate,
		EnqueuedAt: time.Now(),
	})
}

// displayFrame stores the decoded JPEG and advances the FPS counter.
// The FPS value is a fixed one-second-window count: published and
// reset at the window boundary, incremented after the check.
func (s *Session) displayFrame(data string) {
	frame, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		s.log.Warn("frame decode failed", zap.Error(err))
		s.conv.Append(SenderSystem, "Error displaying video frame")
		return
	}

	now := time.Now()

	s.mu.Lock()
	s.frame.count++
	if s.frame.windowStart.IsZero() {
		s.frame.windowStart = now
	}
	if now.Sub(s.frame.windowStart) >= time.Second {
		s.frame.fps = s.frame.counter
		s.frame.counter = 0
		s.frame.windowStart = now
	}
	s.frame.counter++
	s.frame.lastUpdate = now
	s.frame.data = frame
	s.mu.Unlock()
}

// applyStatus bulk-updates session info from a status broadcast.
// Missing fields fall back to their defaults.
func (s *Session) applyStatus(msg protocol.Inbound) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ClientID != "" {
		s.info.ClientID = msg.ClientID
	} else {
		s.info.ClientID = "Unknown"
	}
	if msg.IsReceiver {
		s.info.Role = "Receiver"
	} else {
		s.info.Role = "Unknown"
	}
	if msg.BroadcasterID != "" {
		s.info.Broadcaster = msg.BroadcasterID
	} else {
		s.info.Broadcaster = "None"
	}
	s.info.TotalClients = msg.TotalClients
}
