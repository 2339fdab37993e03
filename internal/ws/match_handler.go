package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mortargolf/backend/internal/auth"
	"github.com/mortargolf/backend/internal/config"
	"github.com/mortargolf/backend/internal/game"
	"github.com/rs/zerolog/log"
)

var ErrUnknownMessage = errors.New("unknown message type")

const commandTimeout = 2 * time.Second

// actionData carries the optional fields of client actions.
type actionData struct {
	Club  game.ClubType `json:"club"`
	Delta float64       `json:"delta"`
}

var actions = map[string]game.Action{
	"shot_setup":          game.ActionShotSetup,
	"shot_click":          game.ActionShotClick,
	"shot_cancel":         game.ActionShotCancel,
	"change_club":         game.ActionChangeClub,
	"adjust_aim":          game.ActionAdjustAim,
	"adjust_launch_angle": game.ActionAdjustLaunchAngle,
	"putt_setup":          game.ActionPuttSetup,
	"putt_charge":         game.ActionPuttCharge,
	"putt_release":        game.ActionPuttRelease,
	"putt_cancel":         game.ActionPuttCancel,
}

// MatchHub is the single hub for all matches on this instance.
var MatchHub *Hub

func init() {
	MatchHub = NewHub()
	go MatchHub.run()
}

// HandleWebSocket upgrades a golfer holding a valid join token.
func HandleWebSocket(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		claims, err := auth.ParseJoinToken(cfg.JWTSecret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if game.Manager == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "matches unavailable"})
			return
		}
		m, err := game.Manager.GetMatch(claims.MatchID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
		snap, err := m.Snapshot(ctx)
		cancel()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "match unavailable"})
			return
		}
		if _, ok := snap.Golfer(game.PlayerID(claims.PlayerID)); !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "player not in match"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			conn:     conn,
			playerID: game.PlayerID(claims.PlayerID),
			matchID:  claims.MatchID,
			send:     make(chan []byte, 256),
			hub:      MatchHub,
		}

		MatchHub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			if old := h.attach(client); old != nil {
				log.Info().Str("player", string(client.playerID)).Msg("player reconnecting, closing old connection")
				if err := old.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
					log.Debug().Err(err).Str("player", string(old.playerID)).Msg("close control to old client failed")
				}
				old.conn.Close()
				close(old.send)
			}
			log.Info().Str("player", string(client.playerID)).Str("match", client.matchID).Msg("player connected")
			go client.setConnected(true)

		case client := <-h.unregister:
			if h.detach(client) {
				close(client.send)
				log.Info().Str("player", string(client.playerID)).Str("match", client.matchID).Msg("player disconnected")
				go client.setConnected(false)
			}
		}
	}
}

// setConnected tells the match about the socket and, on connect, sends the
// current state.
func (c *Client) setConnected(connected bool) {
	if game.Manager == nil {
		return
	}
	m, err := game.Manager.GetMatch(c.matchID)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := m.Submit(ctx, game.Connection{PlayerID: c.playerID, Connected: connected}); err != nil {
		log.Warn().Err(err).Str("match", c.matchID).Msg("connection update failed")
		return
	}
	if connected {
		c.sendState(ctx, m)
	}
}

func (c *Client) sendState(ctx context.Context, m *game.Match) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		c.sendError("state unavailable")
		return
	}
	c.sendJSON(outbound{Type: "state", Data: snap})
}

// readPump reads client frames until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("player", string(c.playerID)).Msg("unexpected websocket close")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage turns a client frame into a match command.
func (c *Client) handleMessage(msg Message) {
	m, err := game.Manager.GetMatch(c.matchID)
	if err != nil {
		c.sendError("Match not found")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if msg.Type == "get_state" {
		c.sendState(ctx, m)
		return
	}

	in, err := parseInput(c.playerID, msg)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	ok, err := m.Do(ctx, in)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if !ok {
		c.sendError(msg.Type + " not allowed now")
	}
}

func parseInput(player game.PlayerID, msg Message) (game.Input, error) {
	action, known := actions[msg.Type]
	if !known {
		return game.Input{}, ErrUnknownMessage
	}
	var data actionData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.Input{}, errors.New("invalid " + msg.Type + " data")
		}
	}
	return game.Input{PlayerID: player, Action: action, Club: data.Club, Delta: data.Delta}, nil
}
