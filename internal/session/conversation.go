// ABOUTME: Append-only conversation log
// ABOUTME: Ordered user/AI/system entries, cleared only by explicit user action
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who produced a conversation entry.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderSystem Sender = "system"
)

// Entry is one conversation turn.
type Entry struct {
	ID        string
	Sender    Sender
	Content   string
	Timestamp time.Time
}

// Conversation is the append-only log. Appends are strictly ordered by
// dispatch arrival; the pipeline never clears it.
type Conversation struct {
	mu      sync.Mutex
	entries []Entry
}

// NewConversation creates an empty log.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds one entry.
func (c *Conversation) Append(sender Sender, content string) {
	c.mu.Lock()
	c.entries = append(c.entries, Entry{
		ID:        uuid.New().String(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
	})
	c.mu.Unlock()
}

// Entries returns a copy of the log.
func (c *Conversation) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear empties the log. User-initiated only.
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
}
