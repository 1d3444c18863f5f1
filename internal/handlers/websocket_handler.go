package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"crosschain-hub/internal/services"
	"crosschain-hub/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// WebSocketHandler streams hub notifications to websocket clients
type WebSocketHandler struct {
	pushService *services.WebSocketPushService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(pushService *services.WebSocketPushService) *WebSocketHandler {
	return &WebSocketHandler{
		pushService: pushService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket GET /api/ws
// Records are public, so the stream does not require a token; when one is
// presented the identity is attached to the connection for logging.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	identity, _ := callerIdentity(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	client := services.NewConnection(uuid.New().String(), identity, 256)
	h.pushService.Register(client)

	done := make(chan struct{})
	go h.writeLoop(conn, client, done)
	h.readLoop(conn, client)

	close(done)
	h.pushService.Unregister(client)
	conn.Close()
}

// readLoop applies subscription updates until the client goes away
func (h *WebSocketHandler) readLoop(conn *websocket.Conn, client *services.Connection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ [WebSocket] PANIC recovered in read loop for client %s: %v", client.ID, r)
		}
	}()

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	h.pushService.SendTo(client.ID, gin.H{
		"type":      "connected",
		"client_id": client.ID,
		"timestamp": time.Now().Unix(),
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("⚠️ [WebSocket] Read error for client %s: %v", client.ID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg types.SubscribeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.pushService.SendTo(client.ID, gin.H{"type": "error", "message": "invalid message"})
			continue
		}

		switch msg.Action {
		case "subscribe":
			client.Subscribe(msg.EventTypes, msg.Records)
			h.pushService.SendTo(client.ID, gin.H{
				"type":        "subscribed",
				"event_types": msg.EventTypes,
				"records":     msg.Records,
			})
		case "ping":
			h.pushService.SendTo(client.ID, gin.H{"type": "pong", "timestamp": time.Now().Unix()})
		default:
			h.pushService.SendTo(client.ID, gin.H{"type": "error", "message": "unknown action"})
		}
	}
}

// writeLoop is the only goroutine writing to conn
func (h *WebSocketHandler) writeLoop(conn *websocket.Conn, client *services.Connection, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case body := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
				log.Printf("⚠️ [WebSocket] Write failed for client %s: %v", client.ID, err)
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				conn.Close()
				return
			}
		case <-done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		}
	}
}
