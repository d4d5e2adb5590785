package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/scorelink/domain/entities"
	"github.com/satriahrh/scorelink/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	defaultSendBuffer     = 256
	defaultMaxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	// pages are served from any origin, same as the HTTP API
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HubConfig holds relay limits. Zero values fall back to defaults.
type HubConfig struct {
	SendBuffer     int
	MaxMessageSize int64
}

// Hub maintains the set of connected clients and relays sensor events to all
// of them. The clients map is only written by Run.
type Hub struct {
	// Registered clients keyed by connection id.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Encoded frames to send to every client.
	broadcast chan []byte

	// Closed when Run returns.
	done chan struct{}

	// Mutex for thread-safe reads of the clients map
	mu sync.RWMutex

	sendBuffer     int
	maxMessageSize int64

	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(config HubConfig, m *metrics.Metrics, logger *zap.Logger) *Hub {
	sendBuffer := config.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	maxMessageSize := config.MaxMessageSize
	if maxMessageSize <= 0 {
		maxMessageSize = defaultMaxMessageSize
	}

	return &Hub{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan []byte),
		done:           make(chan struct{}),
		sendBuffer:     sendBuffer,
		maxMessageSize: maxMessageSize,
		metrics:        m,
		logger:         logger,
	}
}

// Run starts the hub's main loop and blocks until ctx is done. Remaining
// clients are disconnected on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.metrics.ConnectionOpened()
			h.logger.Info("Client registered", zap.String("clientID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
				h.metrics.ConnectionClosed()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))

		case frame := <-h.broadcast:
			h.fanOut(frame)
		}
	}
}

// fanOut queues frame on every client, the sender included. A client whose
// buffer is full is disconnected instead of stalling the others.
func (h *Hub) fanOut(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for id, client := range h.clients {
		select {
		case client.send <- frame:
			delivered++
		default:
			delete(h.clients, id)
			close(client.send)
			h.metrics.ClientDropped()
			h.metrics.ConnectionClosed()
			h.logger.Warn("Dropping slow client", zap.String("clientID", id))
		}
	}
	h.metrics.EventRelayed(delivered)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
		h.metrics.ConnectionClosed()
	}
}

// Broadcast relays event to every connected client. It is a no-op once the
// hub has stopped.
func (h *Hub) Broadcast(event entities.SensorEvent) error {
	frame, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- frame:
	case <-h.done:
	}
	return nil
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ConnectionCount returns the number of registered clients
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound frames.
	send chan []byte

	// Connection id, generated per upgrade
	id string

	logger *zap.Logger
}

// HandleWebSocket upgrades the request and attaches the connection to the hub.
func HandleWebSocket(hub *Hub, c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	id := uuid.NewString()
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.sendBuffer),
		id:     id,
		logger: hub.logger.With(zap.String("clientID", id)),
	}

	if !hub.add(client) {
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.logger.Warn("Received non-text message", zap.Int("type", messageType))
			continue
		}
		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage relays sensor events; anything else is dropped.
func (c *Client) processMessage(message []byte) {
	event, err := DecodeEvent(message)
	if err != nil {
		c.logger.Warn("Failed to parse message", zap.Error(err))
		return
	}

	if !event.IsSensor() {
		c.logger.Debug("Ignoring event", zap.String("event", event.Name))
		return
	}

	if err := c.hub.Broadcast(event); err != nil {
		c.logger.Error("Failed to relay sensor event", zap.Error(err))
	}
}
