package bridge

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/klfgate/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// DefaultClientQueue is the per-client send queue length.
	DefaultClientQueue = 64
)

type client struct {
	id   string
	addr string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans out encoded events to websocket clients. A client whose queue is
// full is disconnected rather than slowing the others down.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	queue   int
	closed  bool
}

// NewHub creates a hub with a per-client queue of the given length.
func NewHub(queue int) *Hub {
	if queue <= 0 {
		queue = DefaultClientQueue
	}
	return &Hub{
		clients: make(map[string]*client),
		queue:   queue,
	}
}

// Serve registers conn and pumps messages until the peer goes away. It
// blocks for the lifetime of the connection.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{
		id:   uuid.NewString(),
		addr: conn.RemoteAddr().String(),
		conn: conn,
		send: make(chan []byte, h.queue),
	}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	logging.LogConnection(c.addr, "websocket_opened")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()
	c.stop()
}

// Broadcast queues data for every client and returns how many accepted it.
func (h *Hub) Broadcast(data []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for id, c := range h.clients {
		select {
		case c.send <- data:
			n++
		default:
			logging.Warn("Dropping slow websocket client",
				zap.String("client_id", id),
				zap.String("remote_addr", c.addr),
			)
			delete(h.clients, id)
			c.stop()
		}
	}
	return n
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		c.stop()
	}
}

// readPump discards client messages; it exists to process control frames
// and notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
		logging.LogConnection(c.addr, "websocket_closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Websocket read failed",
					zap.String("remote_addr", c.addr),
					zap.Error(err),
				)
			}
			return
		}
		logging.LogWebSocketMessage(c.addr, "received", msgType, data)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
