// Package stream pushes roster snapshots and overlay frames to websocket clients.
package stream

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"CryptoView/internal/domain/models"
	applogger "CryptoView/pkg/logger"
)

const (
	MsgStatus     = "status"
	MsgRoster     = "roster"
	MsgFrame      = "frame"
	MsgLineAdd    = "line.add"
	MsgLineRemove = "line.remove"
	MsgError      = "error"
)

// Message is the envelope of every server push.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ErrHubClosed is returned when a client connects after Close.
var ErrHubClosed = errors.New("stream hub closed")

type client struct {
	conn *websocket.Conn
	out  chan Message
	done chan struct{}
	once sync.Once

	// line messages are never dropped; wake signals the writer
	mu    sync.Mutex
	lines []Message
	wake  chan struct{}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// push never blocks; a slow client drops messages.
func (c *client) push(m Message) bool {
	select {
	case c.out <- m:
		return true
	default:
		return false
	}
}

// deliver routes line messages to the lossless queue and everything else
// through push.
func (c *client) deliver(m Message) {
	if m.Type != MsgLineAdd && m.Type != MsgLineRemove {
		c.push(m)
		return
	}
	c.mu.Lock()
	if m.Type == MsgLineRemove {
		id := lineID(m)
		for i, p := range c.lines {
			if p.Type == MsgLineAdd && lineID(p) == id {
				// the client never saw the line
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
				c.mu.Unlock()
				return
			}
		}
	}
	c.lines = append(c.lines, m)
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// takeLines returns and clears the pending line messages in order.
func (c *client) takeLines() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.lines
	c.lines = nil
	return out
}

func lineID(m Message) int {
	if l, ok := m.Data.(lineMsg); ok {
		return l.ID
	}
	return 0
}

// Hub fans roster snapshots out to every connected client.
type Hub struct {
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	readTimeout  time.Duration
	bufferSize   int
	logger       *applogger.Logger

	mu       sync.RWMutex
	clients  map[*client]struct{}
	overlays map[*client]struct{}
	last     *Message
	closed   bool
	dropped  int
}

// HubOption configures Hub.
type HubOption func(*Hub)

// WithPingInterval sets the keepalive ping period; the read deadline is twice that.
func WithPingInterval(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.pingInterval = d
			h.readTimeout = 2 * d
		}
	}
}

// WithBufferSize sets the per-client outbound queue length.
func WithBufferSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin:       func(*http.Request) bool { return true },
			EnableCompression: true,
		},
		pingInterval: 45 * time.Second,
		readTimeout:  90 * time.Second,
		bufferSize:   64,
		logger:       applogger.NewNop(),
		clients:      map[*client]struct{}{},
		overlays:     map[*client]struct{}{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetLogger allows DI to inject a logger after construction.
func (h *Hub) SetLogger(l *applogger.Logger) {
	if l != nil {
		h.logger = l
	}
}

// PublishRoster broadcasts s and keeps it as the greeting for new clients.
func (h *Hub) PublishRoster(s models.RosterSnapshot) {
	m := Message{Type: MsgRoster, Data: s}
	h.mu.Lock()
	h.last = &m
	h.mu.Unlock()
	h.broadcast(m)
}

func (h *Hub) broadcast(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.push(m) {
			h.dropped++
		}
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped counts messages discarded because a client fell behind.
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.push(*h.last)
	}
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Overlays is the number of open overlay sessions.
func (h *Hub) Overlays() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.overlays)
}

func (h *Hub) registerOverlay(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.overlays[c] = struct{}{}
	return nil
}

func (h *Hub) unregisterOverlay(c *client) {
	h.mu.Lock()
	delete(h.overlays, c)
	h.mu.Unlock()
	c.close()
}

// ServeRoster upgrades the request and streams roster snapshots until the
// client disconnects.
func (h *Hub) ServeRoster(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written an error response
		return nil
	}
	defer conn.Close()

	cl := h.newClient(conn)
	cl.push(Message{Type: MsgStatus, Data: "connected"})
	if err := h.register(cl); err != nil {
		return nil
	}
	defer h.unregister(cl)
	go h.writeLoop(cl)

	h.readLoop(cl, nil)
	return nil
}

func (h *Hub) newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		out:  make(chan Message, h.bufferSize),
		done: make(chan struct{}),
		wake: make(chan struct{}, 1),
	}
}

func (h *Hub) writeLoop(cl *client) {
	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-cl.wake:
			for _, m := range cl.takeLines() {
				if !h.write(cl, m) {
					return
				}
			}
		case m := <-cl.out:
			if !h.write(cl, m) {
				return
			}
		case <-ping.C:
			if err := cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				cl.close()
				return
			}
		case <-cl.done:
			return
		}
	}
}

func (h *Hub) write(cl *client, m Message) bool {
	_ = cl.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := cl.conn.WriteJSON(m); err != nil {
		h.logger.Debug("websocket write failed", applogger.Error(err))
		cl.close()
		return false
	}
	return true
}

// readLoop blocks until the peer goes away, passing text frames to onText.
func (h *Hub) readLoop(cl *client, onText func([]byte)) {
	_ = cl.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	})
	for {
		mt, data, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case <-cl.done:
			return
		default:
		}
		if mt == websocket.TextMessage && onText != nil {
			onText(data)
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	for c := range h.overlays {
		clients[c] = struct{}{}
	}
	h.clients = map[*client]struct{}{}
	h.overlays = map[*client]struct{}{}
	h.mu.Unlock()
	for c := range clients {
		c.close()
		_ = c.conn.Close()
	}
	return nil
}
