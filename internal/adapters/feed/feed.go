// Package feed fans the room message log out to websocket clients.
package feed

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gavel/internal/domain"
)

const clientBuffer = 16

type event struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
	Display string         `json:"display"`
}

type client struct {
	conn *websocket.Conn
	send chan event
}

// Hub holds the connected feed clients. Slow consumers are dropped rather
// than back-pressuring the room.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Run consumes the manager's event feed until ctx is cancelled.
func (h *Hub) Run(ctx context.Context, events <-chan domain.Message) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg, ok := <-events:
			if !ok {
				h.closeAll()
				return
			}
			h.broadcast(msg)
		}
	}
}

func (h *Hub) broadcast(msg domain.Message) {
	ev := event{Type: "message", Message: msg, Display: msg.DisplayText()}
	h.mu.Lock()
	var slow []*client
	for cl := range h.clients {
		select {
		case cl.send <- ev:
		default:
			slow = append(slow, cl)
		}
	}
	for _, cl := range slow {
		h.removeLocked(cl)
	}
	h.mu.Unlock()
	if len(slow) > 0 {
		log.Warn().Str("module", "adapters.feed").Int("dropped", len(slow)).Msg("dropped slow feed clients")
	}
}

// Handle upgrades the request and serves the feed until the client leaves.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Str("module", "adapters.feed").Err(err).Msg("upgrade failed")
		return
	}
	cl := &client{conn: conn, send: make(chan event, clientBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	log.Info().Str("module", "adapters.feed").Msg("feed client connected")

	go h.writePump(cl)
	h.readPump(cl)
}

func (h *Hub) writePump(cl *client) {
	for ev := range cl.send {
		if err := cl.conn.WriteJSON(ev); err != nil {
			break
		}
	}
	cl.conn.Close()
}

// readPump discards inbound frames; the feed is one-way. It returns when
// the peer disconnects.
func (h *Hub) readPump(cl *client) {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(cl)
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	h.removeLocked(cl)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(cl *client) {
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		h.removeLocked(cl)
	}
}
