package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mortargolf/backend/internal/config"
	"github.com/mortargolf/backend/internal/ws"
)

// HandleMatchWebSocket handles real-time match communication
func HandleMatchWebSocket(cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(cfg)
}
