package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/core/metrics"
)

// CommandHandler receives decoded command messages from any client.
type CommandHandler func(command string, data map[string]interface{})

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Inbound messages from the clients
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Logger
	logger *logrus.Logger

	// Metrics collector, may be nil
	metrics *metrics.Collector

	// Handler for inbound command messages
	handlerMu sync.RWMutex
	onCommand CommandHandler

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Statistics
	stats *HubStats
}

// HubStats contains hub statistics
type HubStats struct {
	ConnectedClients int       `json:"connected_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesReceived int64     `json:"messages_received"`
	LastActivity     time.Time `json:"last_activity"`
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logrus.Logger, collector *metrics.Collector) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		metrics:    collector,
		stats: &HubStats{
			LastActivity: time.Now(),
		},
	}
}

// OnCommand installs the handler for inbound command messages. Commands
// received before a handler is installed are dropped with a warning.
func (h *Hub) OnCommand(handler CommandHandler) {
	h.handlerMu.Lock()
	h.onCommand = handler
	h.handlerMu.Unlock()
}

func (h *Hub) dispatchCommand(command string, data map[string]interface{}) {
	h.handlerMu.RLock()
	handler := h.onCommand
	h.handlerMu.RUnlock()

	if handler == nil {
		h.logger.WithField("command", command).Warn("No command handler installed, dropping command")
		return
	}
	handler(command, data)
}

// Run starts the hub and handles client registration/unregistration and broadcasting
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ticker.C:
			h.updateStats()
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.stats.TotalConnections++
	h.stats.ConnectedClients = len(h.clients)
	h.stats.LastActivity = time.Now()
	if h.metrics != nil {
		h.metrics.WebSocketClients.Set(float64(len(h.clients)))
	}

	h.logger.WithFields(logrus.Fields{
		"client_id":         client.ID,
		"remote_addr":       client.RemoteAddr,
		"connected_clients": len(h.clients),
	}).Info("WebSocket client connected")

	// Send welcome message
	welcome := Message{
		Type: MessageTypeConnection,
		Data: map[string]interface{}{
			"status":    "connected",
			"client_id": client.ID,
		},
	}
	client.send <- welcome.ToJSON()
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.stats.ConnectedClients = len(h.clients)
		h.stats.LastActivity = time.Now()
		if h.metrics != nil {
			h.metrics.WebSocketClients.Set(float64(len(h.clients)))
		}

		h.logger.WithFields(logrus.Fields{
			"client_id":         client.ID,
			"connected_clients": len(h.clients),
		}).Info("WebSocket client disconnected")
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	atomic.AddInt64(&h.stats.MessagesSent, 1)
	h.mu.Lock()
	h.stats.LastActivity = time.Now()
	h.mu.Unlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// Client's send channel is full, close it
			h.unregister <- client
		}
	}
}

func (h *Hub) updateStats() {
	h.mu.Lock()
	h.stats.ConnectedClients = len(h.clients)
	h.mu.Unlock()
}

// BroadcastToAll broadcasts a message to all connected clients
func (h *Hub) BroadcastToAll(message Message) {
	data := message.ToJSON()
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Broadcast channel is full, message dropped")
	}
}

// Notify adapts the hub to the panel's notifier interface. Known events are
// converted into their typed message shapes; anything else broadcasts as a
// generic payload envelope.
func (h *Hub) Notify(event string, payload interface{}) {
	switch event {
	case MessageTypeStatus:
		h.BroadcastToAll(StatusMessage{Payload: payload}.ToMessage())
		return
	case MessageTypeBrightnessChanged:
		if data, ok := payload.(map[string]interface{}); ok {
			h.BroadcastToAll(BrightnessChangedMessage{
				DisplayID: asString(data["display_id"]),
				Level:     asInt(data["level"]),
				Source:    asString(data["source"]),
			}.ToMessage())
			return
		}
	}

	h.BroadcastToAll(Message{
		Type: event,
		Data: map[string]interface{}{
			"payload": payload,
		},
	})
}

// messageReceived counts one inbound client message. Called from client
// read-pump goroutines, so the counter is atomic.
func (h *Hub) messageReceived() {
	atomic.AddInt64(&h.stats.MessagesReceived, 1)
}

// GetStats returns current hub statistics
func (h *Hub) GetStats() *HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return &HubStats{
		ConnectedClients: len(h.clients),
		TotalConnections: h.stats.TotalConnections,
		MessagesSent:     atomic.LoadInt64(&h.stats.MessagesSent),
		MessagesReceived: atomic.LoadInt64(&h.stats.MessagesReceived),
		LastActivity:     h.stats.LastActivity,
	}
}

// GetClientCount returns the current number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
