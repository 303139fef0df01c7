package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"backoffice/internal/model"
	"backoffice/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	EventComplaintCreated       = "complaint.created"
	EventComplaintStatusChanged = "complaint.status_changed"
	EventPaymentReminders       = "payment.reminders_sent"
	EventUserTasksGenerated     = "user_tasks.generated"
	EventPermissionsChanged     = "role.permissions_changed"
)

// eventMenus maps an event to the menu a client needs view access on to receive it.
// Events missing from the map go to every authenticated client.
var eventMenus = map[string]string{
	EventComplaintCreated:       model.MenuURLComplaints,
	EventComplaintStatusChanged: model.MenuURLComplaints,
	EventPaymentReminders:       model.MenuURLPayments,
	EventUserTasksGenerated:     model.MenuURLUserTasks,
}

const (
	writeWait  = 10 * time.Second
	accessWait = 2 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Event is the JSON payload of every frame
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// AccessChecker decides whether a user may see a menu. The access service implements it.
type AccessChecker interface {
	CheckAccessByURL(ctx context.Context, userID uint, url string, kind model.PermissionKind) bool
}

type frame struct {
	data    []byte
	menuURL string
}

// Client represents a single connected WebSocket client
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan frame
	userID uint
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan frame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
	upgrader   websocket.Upgrader
	access     AccessChecker
}

// NewHub initializes a new WS Hub instance. allowedOrigins empty accepts any origin.
// Menu-scoped events are only delivered to clients the checker grants view access; with a
// nil checker they are not delivered at all.
func NewHub(log *zap.Logger, allowedOrigins []string, access AccessChecker) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		broadcast:  make(chan frame, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        log.Named("ws"),
		access:     access,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// Run starts the core dispatch loop for WebSocket events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("client connected", zap.Uint("user_id", client.userID))
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug("client disconnected", zap.Uint("user_id", client.userID))
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for all clients allowed to see it. It never blocks the caller; events are dropped when the
// queue is full.
func (h *Hub) Publish(eventType string, data interface{}) {
	msg, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		h.log.Error("failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- frame{data: msg, menuURL: eventMenus[eventType]}:
	default:
		h.log.Warn("event dropped, broadcast queue full", zap.String("type", eventType))
	}
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// allowed runs outside the hub loop so a slow permission lookup only stalls this client
func (c *Client) allowed(f frame) bool {
	if f.menuURL == "" {
		return true
	}
	if c.hub.access == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), accessWait)
	defer cancel()
	return c.hub.access.CheckAccessByURL(ctx, c.userID, f.menuURL, model.PermView)
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case f, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			var batch [][]byte
			if c.allowed(f) {
				batch = append(batch, f.data)
			}
			// Fast track writing queued messages
			n := len(c.send)
			for i := 0; i < n; i++ {
				queued, ok := <-c.send
				if !ok {
					break
				}
				if c.allowed(queued) {
					batch = append(batch, queued.data)
				}
			}
			if len(batch) == 0 {
				continue
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			for i, msg := range batch {
				if i > 0 {
					_, _ = w.Write([]byte{'\n'})
				}
				_, _ = w.Write(msg)
			}
			if err := w.Close(); err != nil {
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

// readPump drains the connection; clients are not expected to send anything but pongs
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected close", zap.Error(err))
			}
			return
		}
	}
}

// ServeWs authenticates the access token passed as ?token= and upgrades the connection
func (h *Hub) ServeWs(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims, err := issuer.Parse(tokenString)
		if err != nil {
			h.log.Debug("connection rejected", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("upgrade failed", zap.Error(err))
			return
		}
		client := &Client{hub: h, conn: conn, send: make(chan frame, 256), userID: userID}
		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
