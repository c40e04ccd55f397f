// ABOUTME: Tests for the audio chunk queue
// ABOUTME: Covers FIFO ordering, counters, and disconnect reset
package audio

import "testing"

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()

	for i := 0; i < 5; i++ {
		q.Enqueue(Chunk{SampleRate: 16000 + i})
	}

	if q.Len() != 5 {
		t.Fatalf("expected 5 pending, got %d", q.Len())
	}

	for i := 0; i < 5; i++ {
		c, ok := q.Dequeue()
		if !ok {
			t.Fatalf("dequeue %d failed", i)
		}
		if c.SampleRate != 16000+i {
			t.Errorf("out of order: expected %d, got %d", 16000+i, c.SampleRate)
		}
	}

	if _, ok := q.Dequeue(); ok {
		t.Error("expected empty queue")
	}
}

func TestQueueStats(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Chunk{})
	q.Enqueue(Chunk{})
	q.MarkPlayed()
	q.MarkError()

	stats := q.Stats()
	if stats.Played != 1 || stats.Errors != 1 || stats.Pending != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestQueueReset(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Chunk{})
	q.Enqueue(Chunk{})
	q.MarkPlayed()
	q.MarkError()

	q.Reset()

	stats := q.Stats()
	if stats.Played != 0 || stats.Errors != 0 || stats.Pending != 0 {
		t.Errorf("expected zeroed stats after reset, got %+v", stats)
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("expected empty queue after reset")
	}
}
