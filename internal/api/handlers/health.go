package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mortargolf/backend/internal/game"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(c *gin.Context) {
	live := 0
	if game.Manager != nil {
		live = game.Manager.GetActiveMatchCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"service":      "mortargolf-api",
		"version":      version,
		"uptime":       time.Since(startTime).String(),
		"live_matches": live,
	})
}
