package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/middleware"
)

const defaultWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type tokenParser interface {
	ParseAccessToken(tokenStr string) (uuid.UUID, string, error)
}

// Hub relays catalog events from Redis to every connected storefront client.
type Hub struct {
	mu          sync.RWMutex
	writeMu     sync.Mutex
	writeWait   time.Duration
	connections map[*websocket.Conn]uuid.UUID
	redisClient *redis.Client
	channel     string
	jwt         tokenParser
	log         *logger.Logger
}

func NewHub(redisClient *redis.Client, channel string, jwt tokenParser, log *logger.Logger) *Hub {
	return &Hub{
		writeWait:   defaultWriteWait,
		connections: make(map[*websocket.Conn]uuid.UUID),
		redisClient: redisClient,
		channel:     channel,
		jwt:         jwt,
		log:         log,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on the upgrade, so a query token is accepted too
	tokenStr, ok := middleware.TokenFromRequest(r)
	if !ok {
		tokenStr = r.URL.Query().Get("token")
	}
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, _, err := h.jwt.ParseAccessToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.register(userID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Run subscribes to the catalog channel until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	pubsub := h.redisClient.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.Broadcast([]byte(msg.Payload))
		}
	}
}

// Broadcast writes data to every open connection. A client that cannot take
// the message within writeWait is dropped.
func (h *Hub) Broadcast(data []byte) {
	// gorilla allows one writer per connection
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.mu.RLock()
	targets := make(map[*websocket.Conn]uuid.UUID, len(h.connections))
	for conn, userID := range h.connections {
		targets[conn] = userID
	}
	h.mu.RUnlock()

	for conn, userID := range targets {
		conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("websocket write failed", "user_id", userID.String(), "error", err)
			// Closing ends the read loop, which unregisters the connection
			conn.Close()
		}
	}
}

// Count reports the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) register(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	h.connections[conn] = userID
	total := len(h.connections)
	h.mu.Unlock()

	h.log.Debug("websocket connected", "user_id", userID.String(), "total", total)
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	userID := h.connections[conn]
	delete(h.connections, conn)
	h.mu.Unlock()

	conn.Close()
	h.log.Debug("websocket disconnected", "user_id", userID.String())
}
