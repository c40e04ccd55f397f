// ABOUTME: Multi-format audio chunk decoder
// ABOUTME: Normalizes PCM with anti-glitch smoothing, decodes MP3/Opus containers
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hajimehoshi/go-mp3"
	"gopkg.in/hraban/opus.v2"
)

const (
	// Samples within one chunk that jump by more than this are treated
	// as a discontinuity and blended toward the previous sample.
	glitchThreshold = 0.5
	glitchBlend     = 0.3

	maxFadeSamples = 64

	// Opus frames are at most 120ms; sized for 48kHz stereo.
	maxOpusFrame = 5760 * 2
)

// Decode converts one chunk into a normalized mono buffer.
// Raw PCM gets the smoothing and edge-fade treatment; container
// formats are decoded by their codec and returned as-is.
func Decode(c Chunk) (Buffer, error) {
	switch c.Format {
	case FormatPCM16:
		return decodePCM16(c)
	case FormatMP3:
		return decodeMP3(c)
	case FormatOpus:
		return decodeOpus(c)
	default:
		return Buffer{}, &DecodeError{Format: c.Format, Err: fmt.Errorf("unsupported format")}
	}
}

// decodePCM16 interprets the payload as little-endian signed 16-bit
// mono samples.
func decodePCM16(c Chunk) (Buffer, error) {
	if len(c.Payload)%2 != 0 {
		return Buffer{}, &DecodeError{Format: c.Format, Err: fmt.Errorf("odd payload length %d", len(c.Payload))}
	}

	n := len(c.Payload) / 2
	samples := make([]float32, n)

	for i := 0; i < n; i++ {
		raw := int16(binary.LittleEndian.Uint16(c.Payload[i*2:]))
		s := float32(raw) / 32768.0

		// Smooth discontinuities against the already-processed
		// previous sample. This is a left-to-right stateful pass.
		if i > 0 {
			prev := samples[i-1]
			if diff := float64(s - prev); math.Abs(diff) > glitchThreshold {
				s = prev + (s-prev)*glitchBlend
			}
		}

		samples[i] = clampSample(s)
	}

	applyEdgeFades(samples)

	return Buffer{Samples: samples, SampleRate: c.SampleRate}, nil
}

// applyEdgeFades ramps gain linearly over both chunk boundaries to
// kill clicks introduced by per-chunk scheduling.
func applyEdgeFades(samples []float32) {
	n := len(samples)
	fadeLen := n / 4
	if fadeLen > maxFadeSamples {
		fadeLen = maxFadeSamples
	}
	if fadeLen == 0 {
		return
	}

	for i := 0; i < fadeLen; i++ {
		samples[i] *= float32(i) / float32(fadeLen)
	}
	for i := n - fadeLen; i < n; i++ {
		samples[i] *= float32(n-i) / float32(fadeLen)
	}
}

func clampSample(s float32) float32 {
	if s > 1.0 {
		return 1.0
	}
	if s < -1.0 {
		return -1.0
	}
	return s
}

// decodeMP3 decodes an MP3 payload. go-mp3 always emits 16-bit
// stereo; the result is downmixed to mono at the stream's own rate.
func decodeMP3(c Chunk) (Buffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(c.Payload))
	if err != nil {
		return Buffer{}, &DecodeError{Format: c.Format, Err: err}
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return Buffer{}, &DecodeError{Format: c.Format, Err: err}
	}

	// 2 channels x 2 bytes per frame
	frames := len(pcm) / 4
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(pcm[i*4:]))
		right := int16(binary.LittleEndian.Uint16(pcm[i*4+2:]))
		samples[i] = (float32(left) + float32(right)) / 2 / 32768.0
	}

	return Buffer{Samples: samples, SampleRate: dec.SampleRate()}, nil
}

// decodeOpus decodes a single Opus frame at the chunk's sample rate.
func decodeOpus(c Chunk) (Buffer, error) {
	dec, err := opus.NewDecoder(c.SampleRate, 1)
	if err != nil {
		return Buffer{}, &DecodeError{Format: c.Format, Err: err}
	}

	pcm := make([]int16, maxOpusFrame)
	n, err := dec.Decode(c.Payload, pcm)
	if err != nil {
		return Buffer{}, &DecodeError{Format: c.Format, Err: err}
	}

	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = float32(pcm[i]) / 32768.0
	}

	return Buffer{Samples: samples, SampleRate: c.SampleRate}, nil
}
