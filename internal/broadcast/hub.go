// Package broadcast fans layout changes out to websocket subscribers of a
// project channel.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message types
const (
	// Server -> Client
	MsgTypeConnected     = "connected"
	MsgTypeLayoutUpdated = "layout.updated"
	MsgTypePong          = "pong"
	MsgTypeError         = "error"

	// Client -> Server
	MsgTypePing = "ping"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("broadcast hub closed")

// Event is one notification on a channel.
type Event struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	Revision  int64           `json:"revision,omitempty"`
	Source    string          `json:"source,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Publisher delivers events without waiting for subscribers.
type Publisher interface {
	Publish(ctx context.Context, channelID string, ev Event) error
}

// Options configures a Hub.
type Options struct {
	QueueSize    int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 32
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	return o
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks websocket subscribers per channel.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*client]struct{}
	closed   bool

	upgrader websocket.Upgrader
	opts     Options
	log      *zap.Logger
}

// NewHub creates a Hub.
func NewHub(opts Options, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		channels: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		opts: opts.withDefaults(),
		log:  log.With(zap.String("component", "broadcast")),
	}
}

// Publish queues ev for every subscriber of channelID. It never blocks:
// subscribers whose queue is full miss the event.
func (h *Hub) Publish(ctx context.Context, channelID string, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}

	dropped := 0
	for c := range h.channels[channelID] {
		select {
		case c.send <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.log.Warn("subscriber queue full, event dropped",
			zap.String("channel", channelID), zap.Int("dropped", dropped))
	}
	return nil
}

// Subscribers returns the number of clients on channelID.
func (h *Hub) Subscribers(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}

// ServeWS upgrades the request and keeps the connection subscribed to
// channelID until the client goes away or the hub closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, channelID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn, send: make(chan []byte, h.opts.QueueSize)}
	if !h.register(channelID, c) {
		conn.Close()
		return ErrClosed
	}
	h.log.Debug("client connected", zap.String("channel", channelID))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(c)
	}()

	h.enqueue(channelID, c, Event{Type: MsgTypeConnected, ProjectID: channelID})
	h.readLoop(channelID, c)

	h.unregister(channelID, c)
	<-writerDone
	conn.Close()
	h.log.Debug("client disconnected", zap.String("channel", channelID))
	return nil
}

// Close disconnects every subscriber. Publish returns ErrClosed afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, clients := range h.channels {
		for c := range clients {
			close(c.send)
		}
		delete(h.channels, id)
	}
}

func (h *Hub) register(channelID string, c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	clients, ok := h.channels[channelID]
	if !ok {
		clients = make(map[*client]struct{})
		h.channels[channelID] = clients
	}
	clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(channelID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.channels[channelID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.channels, channelID)
	}
}

// enqueue sends to a single client if it is still registered.
func (h *Hub) enqueue(channelID string, c *client, ev Event) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.channels[channelID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) readLoop(channelID string, c *client) {
	c.conn.SetReadLimit(64 * 1024)
	readTimeout := 2 * h.opts.PingInterval
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg Event
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("connection error", zap.String("channel", channelID), zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case MsgTypePing:
			h.enqueue(channelID, c, Event{Type: MsgTypePong})
		default:
			h.enqueue(channelID, c, Event{Type: MsgTypeError, Payload: json.RawMessage(`"unknown message type"`)})
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				// Unblock readLoop so ServeWS can unregister.
				c.conn.Close()
				drain(c.send)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				drain(c.send)
				return
			}
		}
	}
}

func drain(ch <-chan []byte) {
	for range ch {
	}
}
