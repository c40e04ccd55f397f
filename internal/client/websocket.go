// ABOUTME: WebSocket transport for the Vision Assistant service
// ABOUTME: Feeds a single inbound event channel consumed by the session dispatch loop
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 5 * time.Second

	// CodeAbnormal is reported when the peer vanished without a close
	// frame, distinct from any real WebSocket close code.
	CodeAbnormal = -1
)

// EventKind discriminates transport events.
type EventKind int

const (
	// EventMessage carries one raw inbound text frame.
	EventMessage EventKind = iota
	// EventClosed reports the connection is gone, with the close code.
	EventClosed
)

// Event is one item on the inbound event stream. Playback and
// dispatch both key off this single channel.
type Event struct {
	Kind   EventKind
	Data   []byte
	Code   int
	Reason string
}

// Conn wraps a WebSocket connection to the Vision service.
type Conn struct {
	ws     *websocket.Conn
	events chan Event
	log    *zap.Logger

	mu     sync.Mutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// Dial connects to the given endpoint and starts the read loop.
func Dial(uri string, log *zap.Logger) (*Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	ws, _, err := dialer.Dial(uri, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", uri, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		ws:     ws,
		events: make(chan Event, 64),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	go c.readLoop()

	log.Info("connected", zap.String("uri", uri))
	return c, nil
}

// Events returns the inbound event stream. The channel is closed after
// an EventClosed has been delivered.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// SendJSON writes one outbound JSON message.
func (c *Conn) SendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("not connected")
	}

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

// readLoop reads frames until the connection dies, then reports the
// close code and shuts the event channel.
func (c *Conn) readLoop() {
	defer close(c.events)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			code, reason := closeDetails(err)
			c.log.Info("connection closed",
				zap.Int("code", code), zap.String("reason", reason))

			select {
			case c.events <- Event{Kind: EventClosed, Code: code, Reason: reason}:
			case <-c.ctx.Done():
			}
			return
		}

		select {
		case c.events <- Event{Kind: EventMessage, Data: data}:
		case <-c.ctx.Done():
			return
		}
	}
}

// closeDetails extracts the close code from a read error. An error
// without a close frame counts as abnormal.
func closeDetails(err error) (int, string) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text
	}
	return CodeAbnormal, err.Error()
}

// Close tears down the connection. Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.ws.Close()
}

// NormalClose reports whether a close code is a clean shutdown.
func NormalClose(code int) bool {
	return code == websocket.CloseNormalClosure
}
