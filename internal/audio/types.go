// ABOUTME: Audio type definitions
// ABOUTME: Defines protocol chunks and decoded sample buffers
package audio

import (
	"fmt"
	"time"
)

// Chunk formats carried by audio_from_gemini messages.
const (
	FormatPCM16 = "int16"
	FormatMP3   = "mp3"
	FormatOpus  = "opus"
)

// Chunk is one unit of encoded audio from the protocol,
// payload already base64-decoded.
type Chunk struct {
	Payload    []byte
	Format     string
	SampleRate int
	EnqueuedAt time.Time
}

// Buffer holds decoded mono samples in [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// DecodeError marks a failure confined to a single chunk.
// The queue keeps draining past it.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s chunk: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
