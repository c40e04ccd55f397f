// ABOUTME: Audio output device abstraction and oto implementation
// ABOUTME: Provides the audio clock and per-buffer end-of-playback signals
package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/Vision-Assistant/vision-go/internal/audio"
)

// Device is the output sink the scheduler drives. Now runs in the
// device's own monotonic clock domain, in seconds.
type Device interface {
	Now() float64
	// Play routes one buffer through gain and tap to the output and
	// returns a channel closed when the buffer's scheduled window ends.
	Play(buf audio.Buffer, at float64) (<-chan struct{}, error)
	Suspended() bool
	Resume() error
	Close() error
}

// writeBlock is the granularity at which gain is applied, so live
// volume changes land mid-buffer.
const writeBlockMs = 20

// OtoDevice plays buffers through an ebitengine/oto context. A
// persistent player pulls from a pipe; pipe writes block once oto's
// internal buffer is full, which paces the drain loop to realtime.
type OtoDevice struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeWriter *io.PipeWriter
	gain       *Gain
	tap        *Tap
	log        *zap.Logger
	sampleRate int
	epoch      time.Time
	suspended  atomic.Bool
	ready      bool
}

// NewOtoDevice opens the output at the given rate, mono 16-bit.
func NewOtoDevice(sampleRate int, gain *Gain, tap *Tap, log *zap.Logger) (*OtoDevice, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	pr, pw := io.Pipe()
	player := otoCtx.NewPlayer(pr)
	player.Play()

	log.Info("audio output initialized", zap.Int("sample_rate", sampleRate))

	return &OtoDevice{
		otoCtx:     otoCtx,
		player:     player,
		pipeWriter: pw,
		gain:       gain,
		tap:        tap,
		log:        log,
		sampleRate: sampleRate,
		epoch:      time.Now(),
		ready:      true,
	}, nil
}

// Now returns seconds since the device opened.
func (d *OtoDevice) Now() float64 {
	return time.Since(d.epoch).Seconds()
}

// Play writes the buffer through the gain stage in small blocks. The
// done channel fires when the device clock reaches the end of the
// buffer's scheduled window.
func (d *OtoDevice) Play(buf audio.Buffer, at float64) (<-chan struct{}, error) {
	if !d.ready {
		return nil, fmt.Errorf("output not initialized")
	}

	blockSamples := d.sampleRate * writeBlockMs / 1000
	if blockSamples < 1 {
		blockSamples = 1
	}

	for off := 0; off < len(buf.Samples); off += blockSamples {
		end := off + blockSamples
		if end > len(buf.Samples) {
			end = len(buf.Samples)
		}
		if err := d.writeBlock(buf.Samples[off:end]); err != nil {
			return nil, fmt.Errorf("device write failed: %w", err)
		}
	}

	done := make(chan struct{})
	delay := at + buf.Duration() - d.Now()
	if delay <= 0 {
		close(done)
		return done, nil
	}
	time.AfterFunc(time.Duration(delay*float64(time.Second)), func() {
		close(done)
	})
	return done, nil
}

// writeBlock applies the current gain, feeds the analysis tap, and
// pushes int16 bytes into the pipe.
func (d *OtoDevice) writeBlock(samples []float32) error {
	m := d.gain.Multiplier()

	post := make([]float32, len(samples))
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := s * m
		if v > 1.0 {
			v = 1.0
		}
		if v < -1.0 {
			v = -1.0
		}
		post[i] = v
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*32767)))
	}

	d.tap.Push(post)

	_, err := d.pipeWriter.Write(out)
	return err
}

// Suspend pauses the output device.
func (d *OtoDevice) Suspend() error {
	if err := d.otoCtx.Suspend(); err != nil {
		return err
	}
	d.suspended.Store(true)
	return nil
}

// Suspended reports whether the device is paused.
func (d *OtoDevice) Suspended() bool {
	return d.suspended.Load()
}

// Resume unpauses the output device. The scheduler calls this before
// scheduling the next buffer.
func (d *OtoDevice) Resume() error {
	if err := d.otoCtx.Resume(); err != nil {
		return fmt.Errorf("device resume failed: %w", err)
	}
	d.suspended.Store(false)
	return nil
}

// Close stops feeding the device.
func (d *OtoDevice) Close() error {
	if !d.ready {
		return nil
	}
	d.ready = false
	d.pipeWriter.Close()
	return d.otoCtx.Suspend()
}
