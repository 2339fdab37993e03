package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mortargolf/backend/internal/game"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client represents a connected WebSocket client
type Client struct {
	conn     *websocket.Conn
	playerID game.PlayerID
	matchID  string
	send     chan []byte
	hub      *Hub
}

// Hub maintains the set of active clients
type Hub struct {
	clients    map[game.PlayerID]*Client            // playerID -> Client
	rooms      map[string]map[game.PlayerID]*Client // matchID -> playerID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[game.PlayerID]*Client),
		rooms:      make(map[string]map[game.PlayerID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Message is the envelope for every frame in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Publish routes a match event to one golfer or the whole room. It never
// blocks; a full client buffer drops the frame.
func (h *Hub) Publish(matchID string, ev game.Event) {
	data, err := json.Marshal(outbound{Type: ev.Type, Data: ev.Data})
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("marshal event")
		return
	}
	if ev.Player != "" {
		h.SendToPlayer(ev.Player, data)
		return
	}
	h.BroadcastToMatch(matchID, data)
}

// BroadcastToMatch sends a frame to every client in a match
func (h *Hub) BroadcastToMatch(matchID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[matchID] {
		select {
		case client.send <- data:
		default:
			log.Warn().Str("player", string(client.playerID)).Str("match", matchID).Msg("send buffer full, dropping frame")
		}
	}
}

// SendToPlayer sends a frame to a specific player
func (h *Hub) SendToPlayer(playerID game.PlayerID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, exists := h.clients[playerID]
	if !exists {
		return
	}
	select {
	case client.send <- data:
	default:
		log.Warn().Str("player", string(playerID)).Msg("send buffer full, dropping frame")
	}
}

// RoomSize counts connected clients in a match.
func (h *Hub) RoomSize(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// attach adds client, returning the connection it replaced, if any.
func (h *Hub) attach(client *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	old := h.clients[client.playerID]
	if old != nil {
		if room, ok := h.rooms[old.matchID]; ok {
			delete(room, old.playerID)
		}
	}
	h.clients[client.playerID] = client
	if _, ok := h.rooms[client.matchID]; !ok {
		h.rooms[client.matchID] = make(map[game.PlayerID]*Client)
	}
	h.rooms[client.matchID][client.playerID] = client
	return old
}

// detach removes client if it is still the current connection for its
// player. Replaced connections are ignored.
func (h *Hub) detach(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur, ok := h.clients[client.playerID]
	if !ok || cur != client {
		return false
	}
	delete(h.clients, client.playerID)
	if room, ok := h.rooms[client.matchID]; ok {
		delete(room, client.playerID)
		if len(room) == 0 {
			delete(h.rooms, client.matchID)
		}
	}
	return true
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed: the connection was replaced or cleaned up.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("player", string(c.playerID)).Msg("websocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("player", string(c.playerID)).Msg("websocket ping error")
				return
			}
		}
	}
}

// deliver sends to c only while it is the live connection for its player;
// the send channel of a detached client is closed.
func (h *Hub) deliver(c *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[c.playerID] != c {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.hub.deliver(c, data)
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(outbound{Type: "error", Data: map[string]string{"message": message}})
}
