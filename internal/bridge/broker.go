// Package bridge delivers dispatch responses to peers: synchronously on the
// direct POST path, or as discrete pushed messages on a per-peer streaming
// channel (SSE or WebSocket). Every connection owns its own in-order write
// queue; nothing is shared between peers and there is no cross-connection
// ordering guarantee.
package bridge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zbridge-io/zbridge/core/logx"
	"github.com/zbridge-io/zbridge/internal/metrics"
)

// queueDepth bounds the pending writes per connection. A peer that stops
// reading loses messages rather than stalling the bridge; delivery is
// at-most-once per connection instance.
const queueDepth = 64

// Conn is one peer's push channel. Writes after Close are silently dropped.
type Conn struct {
	ID       string
	OpenedAt time.Time

	mu      sync.Mutex
	closed  bool
	pending chan []byte
}

// Enqueue appends one complete JSON message to the connection's write queue.
// It reports whether the message was accepted; a closed connection or a full
// queue drops the message without error.
func (c *Conn) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		metrics.RecordStreamMessage("dropped")
		return false
	}
	select {
	case c.pending <- data:
		metrics.RecordStreamMessage("queued")
		return true
	default:
		logx.Log.Warn().Str("conn", c.ID).Msg("stream queue full; dropping message")
		metrics.RecordStreamMessage("dropped")
		return false
	}
}

// Push marshals v and enqueues it.
func (c *Conn) Push(v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		logx.Log.Error().Err(err).Str("conn", c.ID).Msg("stream message marshal failed")
		return false
	}
	return c.Enqueue(b)
}

func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.pending)
}

// Broker tracks open streaming connections.
type Broker struct {
	mu    sync.Mutex
	conns map[string]*Conn
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{conns: map[string]*Conn{}}
}

// Connect registers a new connection and returns it.
func (b *Broker) Connect() *Conn {
	c := &Conn{ID: uuid.NewString(), OpenedAt: time.Now(), pending: make(chan []byte, queueDepth)}
	b.mu.Lock()
	b.conns[c.ID] = c
	b.mu.Unlock()
	metrics.StreamOpened()
	logx.Log.Debug().Str("conn", c.ID).Msg("stream opened")
	return c
}

// Disconnect tears the connection down and releases its queue. Safe to call
// more than once.
func (b *Broker) Disconnect(c *Conn) {
	b.mu.Lock()
	_, open := b.conns[c.ID]
	delete(b.conns, c.ID)
	b.mu.Unlock()
	if !open {
		return
	}
	c.close()
	metrics.StreamClosed()
	logx.Log.Debug().Str("conn", c.ID).Dur("age", time.Since(c.OpenedAt)).Msg("stream closed")
}

// Get returns the connection with the given id, if open.
func (b *Broker) Get(id string) (*Conn, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.conns[id]
	return c, ok
}

// Broadcast pushes v to every open connection.
func (b *Broker) Broadcast(v any) {
	b.mu.Lock()
	conns := make([]*Conn, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.Unlock()
	for _, c := range conns {
		c.Push(v)
	}
}

// Len reports the number of open connections.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}
