package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mortargolf/backend/internal/config"
	"github.com/mortargolf/backend/internal/game"
	"github.com/mortargolf/backend/internal/ws"
	"github.com/rs/zerolog"
)

func setupRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:        "development",
		JWTSecret:          "test-secret",
		JoinTokenTTL:       time.Hour,
		MaxPlayersPerMatch: 8,
		MinPlayers:         1,
		SnapshotInterval:   5 * time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	game.InitializeManager(ctx, nil, nil, cfg, game.DefaultCourse(), ws.MatchHub, zerolog.Nop())

	router := gin.New()
	SetupRoutes(router, cfg)
	return router, cfg
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func createMatch(t *testing.T, r http.Handler) (string, string) {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/matches", nil, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create match: status %d body %s", w.Code, w.Body.String())
	}
	return body["match_id"].(string), body["host_key"].(string)
}

func joinMatch(t *testing.T, r http.Handler, matchID, name string) (string, string) {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/matches/"+matchID+"/players", map[string]string{"name": name}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("join: status %d body %s", w.Code, w.Body.String())
	}
	return body["player_id"].(string), body["token"].(string)
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "ok" || body["service"] != "mortargolf-api" {
		t.Errorf("body = %v", body)
	}
}

func TestMatchLifecycle(t *testing.T) {
	r, _ := setupRouter(t)
	matchID, hostKey := createMatch(t, r)
	if hostKey == "" {
		t.Fatal("host key missing")
	}

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/matches", nil, nil)
	if w.Code != http.StatusOK || body["count"].(float64) < 1 {
		t.Fatalf("list: %d %v", w.Code, body)
	}

	playerID, token := joinMatch(t, r, matchID, "Ace")
	if playerID == "" || token == "" {
		t.Fatal("join returned empty player or token")
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/matches/"+matchID+"/players", map[string]string{"name": ""}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty name: status %d, want 400", w.Code)
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/matches/"+matchID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get match: %d", w.Code)
	}
	if body["state"] != string(game.StateLobby) {
		t.Errorf("state = %v, want LOBBY", body["state"])
	}
	if golfers, _ := body["golfers"].([]any); len(golfers) != 1 {
		t.Errorf("golfers = %v, want 1", body["golfers"])
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/matches/"+matchID+"/course", nil, nil)
	if w.Code != http.StatusOK || body["total_par"].(float64) <= 0 {
		t.Errorf("course: %d %v", w.Code, body)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/matches/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown match: status %d, want 404", w.Code)
	}
}

func TestHostActions(t *testing.T) {
	r, _ := setupRouter(t)
	matchID, hostKey := createMatch(t, r)
	path := "/api/v1/matches/" + matchID

	w, _ := doJSON(t, r, http.MethodPost, path+"/pause", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("pause without key: %d, want 401", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPost, path+"/pause", nil, map[string]string{"X-Host-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("pause with wrong key: %d, want 401", w.Code)
	}

	key := map[string]string{"X-Host-Key": hostKey}
	w, body := doJSON(t, r, http.MethodPost, path+"/pause", nil, key)
	if w.Code != http.StatusOK || body["ok"] != true {
		t.Errorf("pause: %d %v", w.Code, body)
	}
	w, _ = doJSON(t, r, http.MethodPost, path+"/pause", nil, key)
	if w.Code != http.StatusConflict {
		t.Errorf("double pause: %d, want 409", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPost, path+"/resume", nil, key)
	if w.Code != http.StatusOK {
		t.Errorf("resume: %d", w.Code)
	}

	// Nobody has joined, so the lobby cannot advance.
	w, _ = doJSON(t, r, http.MethodPost, path+"/advance", nil, key)
	if w.Code != http.StatusConflict {
		t.Errorf("advance empty lobby: %d, want 409", w.Code)
	}

	joinMatch(t, r, matchID, "Ace")
	w, body = doJSON(t, r, http.MethodPost, path+"/advance", nil, key)
	if w.Code != http.StatusOK || body["state"] != string(game.StateTeeTime) {
		t.Errorf("advance: %d %v", w.Code, body)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/matches/nope/pause", nil, key)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown match: %d, want 404", w.Code)
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if msg["type"] == want {
			return msg
		}
	}
}

func TestWebSocket(t *testing.T) {
	r, _ := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	matchID, _ := createMatch(t, r)
	_, token := joinMatch(t, r, matchID, "Ace")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?token=" + token
	header := http.Header{"Origin": {"http://localhost:5173"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	defer conn.Close()

	readUntil(t, conn, "state")

	conn.WriteJSON(map[string]any{"type": "teleport"})
	msg := readUntil(t, conn, "error")
	if data, _ := msg["data"].(map[string]any); data["message"] != ws.ErrUnknownMessage.Error() {
		t.Errorf("error = %v", msg)
	}

	// Shots are refused in the lobby.
	conn.WriteJSON(map[string]any{"type": "shot_setup"})
	msg = readUntil(t, conn, "error")
	if data, _ := msg["data"].(map[string]any); !strings.Contains(data["message"].(string), "not allowed") {
		t.Errorf("error = %v", msg)
	}

	conn.WriteJSON(map[string]any{"type": "get_state"})
	readUntil(t, conn, "state")
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	r, _ := setupRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/ws", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing token: %d, want 400", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/ws?token=garbage", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d, want 401", w.Code)
	}
}
