package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// RefreshMessage tells a client that cached views of resource are stale.
type RefreshMessage struct {
	Type     string `json:"type"`
	Resource string `json:"resource,omitempty"`
	Message  string `json:"message,omitempty"`
}

// wsClient serializes writes to one connection; gorilla connections allow a
// single concurrent writer.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return fn()
}

func (c *wsClient) writeJSON(v interface{}) error {
	return c.write(func() error { return c.conn.WriteJSON(v) })
}

// Hub fans refresh events out to the websocket connections of each user.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*wsClient]struct{}
	upgrader websocket.Upgrader
}

// NewHub returns a hub accepting browser connections from origins. A "*"
// entry allows any origin.
func NewHub(origins []string) *Hub {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return &Hub{
		clients: make(map[string]map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

func (h *Hub) register(userID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*wsClient]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *Hub) unregister(userID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[userID]; exists {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, userID)
		}
	}
}

// ClientCount returns the number of open connections of a user.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// BroadcastRefresh sends a refresh event to every connection of userID.
// Connections that fail to accept the write are dropped.
func (h *Hub) BroadcastRefresh(userID, resource string) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	msg := RefreshMessage{Type: "refresh", Resource: resource}
	for _, c := range clients {
		if err := c.writeJSON(msg); err != nil {
			log.Debugf("Failed to broadcast refresh to client of user %s: %v", userID, err)
			h.unregister(userID, c)
			c.conn.Close()
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[string]map[*wsClient]struct{})
	h.mu.Unlock()

	for _, clients := range all {
		for c := range clients {
			_ = c.write(func() error {
				return c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			})
			c.conn.Close()
		}
	}
}

// serve runs one connection until the client goes away.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &wsClient{conn: conn}
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Debugf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.register(userID, c)
	defer func() {
		h.unregister(userID, c)
		conn.Close()
		log.Debugf("WebSocket connection closed for user %s", userID)
	}()

	if err := c.writeJSON(RefreshMessage{Type: "connected", Message: "WebSocket connection established"}); err != nil {
		log.Debugf("Failed to send welcome message: %v", err)
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				err := c.write(func() error { return conn.WriteMessage(websocket.PingMessage, nil) })
				if err != nil {
					log.Debugf("Ping failed for user %s: %v", userID, err)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debugf("WebSocket error for user %s: %v", userID, err)
			}
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
	}
}

// WebSocket upgrades the request to the caller's refresh channel.
func (h *Handler) WebSocket(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if h.hub == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"message": "Live refresh is disabled"})
		return
	}

	h.hub.serve(ctx.Writer, ctx.Request, userID)
}
