// ABOUTME: FIFO queue of pending audio chunks
// ABOUTME: Tracks played/error counters alongside queue depth
package audio

import "sync"

// Stats is a snapshot of queue counters. Pending is derived from the
// current queue length.
type Stats struct {
	Played  int
	Errors  int
	Pending int
}

// Queue is an unbounded FIFO mailbox of chunks. The dispatcher
// produces, exactly one drain loop consumes.
type Queue struct {
	mu     sync.Mutex
	items  []Chunk
	played int
	errors int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a chunk. Never blocks.
func (q *Queue) Enqueue(c Chunk) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

// Dequeue pops the oldest chunk, reporting false when empty.
func (q *Queue) Dequeue() (Chunk, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Chunk{}, false
	}
	c := q.items[0]
	q.items = q.items[1:]
	return c, true
}

// Len returns the number of pending chunks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// MarkPlayed increments the played counter.
func (q *Queue) MarkPlayed() {
	q.mu.Lock()
	q.played++
	q.mu.Unlock()
}

// MarkError increments the error counter.
func (q *Queue) MarkError() {
	q.mu.Lock()
	q.errors++
	q.mu.Unlock()
}

// Stats returns a snapshot of the counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{Played: q.played, Errors: q.errors, Pending: len(q.items)}
}

// Reset discards all pending chunks and zeroes the counters. Called on
// disconnect so stale audio from a dead session can never play.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.items = nil
	q.played = 0
	q.errors = 0
	q.mu.Unlock()
}
