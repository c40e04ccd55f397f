// ABOUTME: Gapless playback scheduler with single-flight drain loop
// ABOUTME: Owns the playback cursor and serializes scheduling decisions
package player

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Vision-Assistant/vision-go/internal/audio"
)

const (
	// overlapWindow lets consecutive buffers touch instead of leaving
	// a silent seam: a 10ms micro-overlap traded for gap elimination.
	overlapWindow = 0.01

	lowpassCutoff = 8000.0
	lowpassQ      = 0.5
)

// Audio status strings surfaced to the UI.
const (
	StatusDisabled   = "Disabled"
	StatusReady      = "Ready"
	StatusProcessing = "Processing"
	StatusPlaying    = "Playing"
)

// Scheduler drains the audio queue strictly FIFO, decoding each chunk
// and scheduling it back-to-back on the device clock. At most one
// drain loop runs per session.
type Scheduler struct {
	queue  *audio.Queue
	dev    Device
	gain   *Gain
	log    *zap.Logger
	notify func(status string)

	draining atomic.Bool
	epoch    atomic.Uint64

	mu     sync.Mutex
	cursor float64 // next available start time, never decreases
	status string
}

// NewScheduler creates a scheduler over the given queue and device.
// notify receives audio status updates and may be nil.
func NewScheduler(queue *audio.Queue, dev Device, gain *Gain, log *zap.Logger, notify func(string)) *Scheduler {
	return &Scheduler{
		queue:  queue,
		dev:    dev,
		gain:   gain,
		log:    log,
		notify: notify,
		cursor: dev.Now(),
		status: StatusReady,
	}
}

// Enqueue appends a chunk and starts a drain if none is active.
// Returns immediately.
func (s *Scheduler) Enqueue(c audio.Chunk) {
	s.queue.Enqueue(c)
	s.Kick()
}

// Kick starts the drain loop unless one is already running. The CAS
// makes the single-flight guard atomic against concurrent enqueues.
func (s *Scheduler) Kick() {
	if !s.draining.CompareAndSwap(false, true) {
		return
	}
	go s.drain(s.epoch.Load())
}

// drain pops and plays chunks until the queue is empty. epoch pins the
// session generation: Reset invalidates it and the loop bails out
// without touching shared state.
func (s *Scheduler) drain(epoch uint64) {
	s.setStatus(StatusProcessing)

	for {
		if s.epoch.Load() != epoch {
			return
		}
		chunk, ok := s.queue.Dequeue()
		if !ok {
			break
		}
		s.playChunk(chunk, epoch)
	}

	s.draining.Store(false)
	s.setStatus(StatusReady)

	// An enqueue may have landed between the empty check and clearing
	// the guard; reacquire so the chunk is not silently stranded.
	if s.queue.Len() > 0 && s.draining.CompareAndSwap(false, true) {
		go s.drain(s.epoch.Load())
	}
}

// playChunk decodes, filters, schedules, and awaits one chunk. Decode
// failures are counted and skipped; they never abort the drain.
func (s *Scheduler) playChunk(c audio.Chunk, epoch uint64) {
	if s.dev.Suspended() {
		if err := s.dev.Resume(); err != nil {
			s.log.Warn("device resume failed", zap.Error(err))
		}
	}

	buf, err := audio.Decode(c)
	if err != nil {
		s.queue.MarkError()
		s.log.Warn("chunk decode failed",
			zap.String("format", c.Format), zap.Error(err))
		s.setStatus("Error: " + err.Error())
		return
	}

	// source -> lowpass -> gain -> analysis tap -> output. The filter
	// is fresh per buffer; gain and tap are applied by the device at
	// write time so volume changes reach in-flight audio.
	newLowpass(buf.SampleRate, lowpassCutoff, lowpassQ).Process(buf.Samples)

	s.mu.Lock()
	if s.epoch.Load() != epoch {
		// Session disconnected mid-decode: discard, schedule nothing.
		s.mu.Unlock()
		return
	}

	s.setStatusLocked(StatusPlaying)

	now := s.dev.Now()
	start := now
	if s.cursor > start {
		start = s.cursor
	}
	actual := start - overlapWindow
	if actual < now {
		actual = now
	}

	done, err := s.dev.Play(buf, actual)
	if err != nil {
		s.mu.Unlock()
		s.queue.MarkError()
		s.log.Warn("playback failed", zap.Error(err))
		s.setStatus("Error: " + err.Error())
		return
	}

	s.cursor = actual + buf.Duration()
	s.mu.Unlock()

	// Serialize scheduling decisions on the end-of-playback signal.
	<-done

	if s.epoch.Load() != epoch {
		return
	}
	s.queue.MarkPlayed()
}

// SetVolume updates the shared gain stage immediately.
func (s *Scheduler) SetVolume(volume int) {
	s.gain.SetVolume(volume)
}

// Reset invalidates the running drain, discards pending chunks, and
// clears the single-flight guard. The disconnect path.
func (s *Scheduler) Reset() {
	s.epoch.Add(1)
	s.queue.Reset()
	s.draining.Store(false)
}

// Draining reports whether a drain loop currently holds the guard.
func (s *Scheduler) Draining() bool {
	return s.draining.Load()
}

// Status returns the last published audio status string.
func (s *Scheduler) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Scheduler) setStatus(status string) {
	s.mu.Lock()
	s.setStatusLocked(status)
	s.mu.Unlock()
}

func (s *Scheduler) setStatusLocked(status string) {
	s.status = status
	if s.notify != nil {
		s.notify(status)
	}
}
