package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mortargolf/backend/internal/api/handlers"
	"github.com/mortargolf/backend/internal/config"
	"github.com/mortargolf/backend/internal/game"
	"github.com/mortargolf/backend/internal/middleware"
	"github.com/rs/zerolog/log"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Debug().Msg("no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		matches := v1.Group("/matches")
		{
			matches.POST("", handlers.CreateMatch)
			matches.GET("", handlers.ListMatches)
			matches.GET("/:id", handlers.GetMatch)
			matches.GET("/:id/course", handlers.GetCourse)
			matches.POST("/:id/players", handlers.JoinMatch(cfg))

			// Host actions, guarded by X-Host-Key
			matches.POST("/:id/pause", handlers.HostAction(game.HostPause))
			matches.POST("/:id/resume", handlers.HostAction(game.HostResume))
			matches.POST("/:id/lobby", handlers.HostAction(game.HostLobby))
			matches.POST("/:id/advance", handlers.HostAction(game.HostAdvance))
		}

		v1.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleMatchWebSocket(cfg))
	}
}
