package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mortargolf/backend/internal/config"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WebSocketCORSCheck(cfg))
	r.GET("/ws", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestWebSocketCORSCheck(t *testing.T) {
	dev := &config.Config{Environment: "development"}
	prod := &config.Config{Environment: "production", FrontendURL: "https://play.example.com"}

	tests := []struct {
		name    string
		cfg     *config.Config
		origin  string
		upgrade bool
		want    int
	}{
		{"plain request passes", prod, "", false, http.StatusOK},
		{"missing origin", dev, "", true, http.StatusBadRequest},
		{"dev localhost", dev, "http://localhost:3000", true, http.StatusOK},
		{"dev foreign", dev, "https://evil.example", true, http.StatusForbidden},
		{"prod frontend", prod, "https://play.example.com", true, http.StatusOK},
		{"prod localhost", prod, "http://localhost:5173", true, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			newRouter(tt.cfg).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
