package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mortargolf/backend/internal/auth"
	"github.com/mortargolf/backend/internal/game"
)

// HostAction runs a privileged session action for the holder of the
// match's host key.
func HostAction(action game.HostAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !managerReady(c) {
			return
		}
		id := c.Param("id")
		err := game.Manager.VerifyHost(id, c.GetHeader("X-Host-Key"))
		switch {
		case errors.Is(err, game.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		case errors.Is(err, auth.ErrInvalidHostKey):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid host key"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		m, err := game.Manager.GetMatch(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		ok, err := m.Host(ctx, action)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		status := http.StatusOK
		if !ok {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"ok": ok, "action": action, "state": m.Info().State})
	}
}
