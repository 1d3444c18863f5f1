package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"crosschain-hub/internal/metrics"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"
)

// Connection a registered websocket client
type Connection struct {
	ID       string
	Identity types.Address
	Send     chan []byte

	mu         sync.RWMutex
	eventTypes map[string]bool // empty = every event
	records    map[types.Address]bool
}

// NewConnection creates a client with a buffered send queue
func NewConnection(id string, identity types.Address, buffer int) *Connection {
	if buffer <= 0 {
		buffer = 256
	}
	return &Connection{
		ID:         id,
		Identity:   identity,
		Send:       make(chan []byte, buffer),
		eventTypes: make(map[string]bool),
		records:    make(map[types.Address]bool),
	}
}

// Subscribe narrows delivery to the given event types and record addresses.
// Empty lists clear the corresponding filter.
func (c *Connection) Subscribe(eventTypes []string, records []types.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventTypes = make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		c.eventTypes[t] = true
	}
	c.records = make(map[types.Address]bool, len(records))
	for _, r := range records {
		c.records[r] = true
	}
}

func (c *Connection) wants(n *models.Notification) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.eventTypes) > 0 && !c.eventTypes[n.EventType] {
		return false
	}
	if len(c.records) > 0 && !c.records[n.RecordAddress] {
		return false
	}
	return true
}

// PushMessage message sent to websocket clients
type PushMessage struct {
	Type      string          `json:"type"`
	MessageID string          `json:"message_id"`
	Timestamp int64           `json:"timestamp"`
	Record    types.Address   `json:"record"`
	Data      json.RawMessage `json:"data"`
}

// WebSocketPushService fans notifications out to websocket clients
type WebSocketPushService struct {
	mutex       sync.RWMutex
	connections map[string]*Connection
}

// NewWebSocketPushService creates a new WebSocketPushService
func NewWebSocketPushService() *WebSocketPushService {
	return &WebSocketPushService{
		connections: make(map[string]*Connection),
	}
}

// Register adds a connection
func (s *WebSocketPushService) Register(conn *Connection) {
	s.mutex.Lock()
	s.connections[conn.ID] = conn
	count := len(s.connections)
	s.mutex.Unlock()

	metrics.WebSocketClients.Set(float64(count))
	log.Printf("📡 WebSocket client registered: %s (identity: %s)", conn.ID, conn.Identity.Hex())
}

// Unregister removes a connection
func (s *WebSocketPushService) Unregister(conn *Connection) {
	s.mutex.Lock()
	delete(s.connections, conn.ID)
	count := len(s.connections)
	s.mutex.Unlock()

	metrics.WebSocketClients.Set(float64(count))
	log.Printf("🔌 WebSocket client unregistered: %s", conn.ID)
}

// ConnectionCount returns the number of registered clients
func (s *WebSocketPushService) ConnectionCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.connections)
}

// Broadcast queues n for every interested client and returns how many got it.
// Slow clients whose queue is full miss the message; they can replay over HTTP.
func (s *WebSocketPushService) Broadcast(n *models.Notification) int {
	body, err := json.Marshal(PushMessage{
		Type:      n.EventType,
		MessageID: n.ID,
		Timestamp: n.Timestamp,
		Record:    n.RecordAddress,
		Data:      json.RawMessage(n.Payload),
	})
	if err != nil {
		log.Printf("❌ Failed to encode push message %s: %v", n.ID, err)
		return 0
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	delivered := 0
	for _, conn := range s.connections {
		if !conn.wants(n) {
			continue
		}
		select {
		case conn.Send <- body:
			delivered++
		default:
			log.Printf("⚠️ WebSocket send queue full for client %s, dropping %s", conn.ID, n.ID)
		}
	}
	return delivered
}

// SendTo queues a raw message for one client
func (s *WebSocketPushService) SendTo(connID string, v interface{}) bool {
	body, err := json.Marshal(v)
	if err != nil {
		return false
	}
	s.mutex.RLock()
	conn, ok := s.connections[connID]
	s.mutex.RUnlock()
	if !ok {
		return false
	}
	select {
	case conn.Send <- body:
		return true
	case <-time.After(time.Second):
		return false
	}
}
