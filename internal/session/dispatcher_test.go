// ABOUTME: Tests for the inbound message dispatcher
// ABOUTME: Covers type routing, status mapping, FPS window, and bad-message isolation
package session

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

// audioMessage builds an audio_from_gemini message carrying n bytes of
// silent PCM.
func audioMessage(n int) string {
	payload := base64.StdEncoding.EncodeToString(make([]byte, n))
	return fmt.Sprintf(`{"type":"audio_from_gemini","data":"%s"}`, payload)
}

func frameMessage() string {
	data := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF})
	return fmt.Sprintf(`{"type":"frame-to-show-frontend","data":"%s"}`, data)
}

func TestDispatchStatus(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{"type":"status","client_id":"c1","is_receiver":true,"total_clients":3}`))

	info := s.Info()
	if info.ClientID != "c1" {
		t.Errorf("expected client c1, got %q", info.ClientID)
	}
	if info.Role != "Receiver" {
		t.Errorf("expected Receiver role, got %q", info.Role)
	}
	if info.TotalClients != 3 {
		t.Errorf("expected 3 clients, got %d", info.TotalClients)
	}
	if info.Broadcaster != "None" {
		t.Errorf("expected None broadcaster, got %q", info.Broadcaster)
	}
}

func TestDispatchStatusDefaults(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{"type":"status","client_id":"c2","is_receiver":true}`))
	s.dispatch([]byte(`{"type":"status"}`))

	info := s.Info()
	if info.ClientID != "Unknown" || info.Role != "Unknown" || info.Broadcaster != "None" {
		t.Errorf("expected defaults after sparse status, got %+v", info)
	}
	if info.TotalClients != 0 {
		t.Errorf("expected 0 clients, got %d", info.TotalClients)
	}
}

func TestDispatchRoleConfirmed(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{"type":"role_confirmed","role":"receiver"}`))

	if got := s.Info().Role; got != "receiver" {
		t.Errorf("expected receiver, got %q", got)
	}
	if !hasSystemEntry(s.conv, "Role confirmed: receiver") {
		t.Error("expected role confirmation entry")
	}
}

func TestDispatchChatMessages(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{"type":"ai","data":"hello there"}`))
	s.dispatch([]byte(`{"type":"user","data":"what do you see"}`))

	entries := s.conv.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Sender != SenderAI || entries[0].Content != "hello there" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Sender != SenderUser || entries[1].Content != "what do you see" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestDispatchBroadcasterChanged(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{"type":"broadcaster_changed","broadcaster_id":"b7"}`))

	if got := s.Info().Broadcaster; got != "b7" {
		t.Errorf("expected b7, got %q", got)
	}
}

func TestDispatchUnknownType(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{"type":"bogus"}`))

	if !hasSystemEntry(s.conv, "Unknown message type: bogus") {
		t.Error("expected unknown-type entry")
	}
}

func TestDispatchMalformedIsolation(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{not json`))
	if !hasSystemEntry(s.conv, "Error parsing message from server") {
		t.Error("expected parse error entry")
	}

	// The next well-formed message still lands.
	s.dispatch([]byte(`{"type":"ai","data":"still alive"}`))
	entries := s.conv.Entries()
	last := entries[len(entries)-1]
	if last.Sender != SenderAI || last.Content != "still alive" {
		t.Errorf("expected follow-up message to dispatch, got %+v", last)
	}
}

func TestDispatchServerError(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{"type":"error","data":"session expired"}`))

	if !hasSystemEntry(s.conv, "Server error: session expired") {
		t.Error("expected server error entry")
	}
}

func TestDispatchAudioEnqueues(t *testing.T) {
	dev := &fakeDevice{}
	s := testSession(t, dev)

	s.dispatch([]byte(audioMessage(320)))

	waitFor(t, time.Second, func() { return s.queue.Stats().Played == 1 })
	if dev.playCount() != 1 {
		t.Errorf("expected 1 device play, got %d", dev.playCount())
	}
}

func TestDispatchAudioBadPayload(t *testing.T) {
	dev := &fakeDevice{}
	s := testSession(t, dev)

	s.dispatch([]byte(`{"type":"audio_from_gemini","data":"%%%not-base64%%%"}`))

	if !hasSystemEntry(s.conv, "Error handling message") {
		t.Error("expected payload error entry")
	}
	if dev.playCount() != 0 {
		t.Errorf("expected no plays, got %d", dev.playCount())
	}
}

func TestDispatchAudioBeforeInit(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	// No scheduler yet; the chunk is dropped, not crashed on.
	s.dispatch([]byte(audioMessage(320)))

	if got := s.queue.Len(); got != 0 {
		t.Errorf("expected empty queue, got %d", got)
	}
}

func TestFrameCounters(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	for i := 0; i < 3; i++ {
		s.dispatch([]byte(frameMessage()))
	}

	snap := s.Snapshot()
	if snap.FrameCount != 3 {
		t.Errorf("expected 3 frames, got %d", snap.FrameCount)
	}
	if snap.FPS != 0 {
		t.Errorf("FPS must stay 0 until the first window closes, got %d", snap.FPS)
	}
	if snap.LastFrame.IsZero() {
		t.Error("expected last frame timestamp to be set")
	}
}

func TestFrameFPSWindow(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	for i := 0; i < 3; i++ {
		s.dispatch([]byte(frameMessage()))
	}

	// Age the window past one second instead of sleeping through it.
	s.mu.Lock()
	s.frame.windowStart = time.Now().Add(-1100 * time.Millisecond)
	s.mu.Unlock()

	s.dispatch([]byte(frameMessage()))

	snap := s.Snapshot()
	if snap.FPS != 3 {
		t.Errorf("expected published FPS 3, got %d", snap.FPS)
	}
	if snap.FrameCount != 4 {
		t.Errorf("expected 4 total frames, got %d", snap.FrameCount)
	}

	// The boundary frame seeds the new window.
	s.mu.Lock()
	counter := s.frame.counter
	s.mu.Unlock()
	if counter != 1 {
		t.Errorf("expected window counter 1 after reset, got %d", counter)
	}
}

func TestFrameBadPayload(t *testing.T) {
	s := NewWithDevice(testConfig(), zap.NewNop(), nil)

	s.dispatch([]byte(`{"type":"frame-to-show-frontend","data":"!!!"}`))

	if !hasSystemEntry(s.conv, "Error displaying video frame") {
		t.Error("expected frame error entry")
	}
	if got := s.Snapshot().FrameCount; got != 0 {
		t.Errorf("expected frame count untouched, got %d", got)
	}
}
