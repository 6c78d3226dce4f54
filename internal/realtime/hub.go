package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/trimbook/internal/events"
	"github.com/BruksfildServices01/trimbook/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024

	sendBuffer = 64
)

var ErrHubStopped = errors.New("realtime: hub stopped")

// Hub keeps the connected shop owners and delivers each event to the
// clients bound to the event's shop.
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	upgrader  websocket.Upgrader
	publisher events.Publisher
	log       *zap.Logger
}

func NewHub(publisher events.Publisher, log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		publisher: publisher,
		log:       log,
	}
}

// Client is one socket bound to one shop.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	slug   string
}

// Run serves register/unregister requests until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.slug] == nil {
				h.clients[c.slug] = make(map[*Client]struct{})
			}
			h.clients[c.slug][c] = struct{}{}
			h.mu.Unlock()

			metrics.ClientConnected()
			h.log.Info("client connected", zap.String("slug", c.slug), zap.String("user_id", c.userID))
			h.publisher.Publish(events.New(events.ClientConnected, c.slug, c.userID, "", nil))

		case c := <-h.unregister:
			if h.remove(c) {
				metrics.ClientDisconnected()
				h.log.Info("client disconnected", zap.String("slug", c.slug), zap.String("user_id", c.userID))
				h.publisher.Publish(events.New(events.ClientDisconnected, c.slug, c.userID, "", nil))
			}

		case <-ctx.Done():
			h.mu.Lock()
			for slug, set := range h.clients {
				for c := range set {
					close(c.send)
					metrics.ClientDisconnected()
				}
				delete(h.clients, slug)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.slug]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.slug)
	}
	close(c.send)
	return true
}

// Broadcast delivers ev to the clients of ev.ShopSlug. A client whose
// buffer is full misses the event.
func (h *Hub) Broadcast(ev events.Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		h.log.Warn("encode event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[ev.ShopSlug] {
		select {
		case c.send <- raw:
		default:
			h.log.Warn("client buffer full, dropping event",
				zap.String("slug", c.slug),
				zap.String("topic", string(ev.Topic)),
			)
		}
	}
}

func (h *Hub) ClientCount(slug string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[slug])
}

// Serve upgrades the request and binds the socket to slug on behalf of
// userID. It returns once the client is registered.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID, slug string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("slug", slug), zap.Error(err))
		return err
	}

	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		slug:   slug,
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return ErrHubStopped
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump only watches for close and pong frames; clients don't talk.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read failed", zap.String("slug", c.slug), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Warn("websocket write failed", zap.String("slug", c.slug), zap.Error(err))
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
