package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mortargolf/backend/internal/auth"
	"github.com/mortargolf/backend/internal/config"
	"github.com/mortargolf/backend/internal/game"
	"github.com/rs/zerolog/log"
)

const requestTimeout = 3 * time.Second

type createMatchRequest struct {
	MaxPlayers       int   `json:"max_players" binding:"omitempty,min=1,max=64"`
	ShopBetweenHoles *bool `json:"shop_between_holes"`
	Seed             int64 `json:"seed"`
}

type joinMatchRequest struct {
	Name string `json:"name" binding:"required,min=1,max=24"`
}

func managerReady(c *gin.Context) bool {
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "matches unavailable"})
		return false
	}
	return true
}

// CreateMatch starts a new match and hands back its one-time host key.
func CreateMatch(c *gin.Context) {
	if !managerReady(c) {
		return
	}
	var req createMatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	m, hostKey, err := game.Manager.CreateMatch(game.CreateOptions{
		MaxPlayers:       req.MaxPlayers,
		ShopBetweenHoles: req.ShopBetweenHoles,
		Seed:             req.Seed,
	})
	if err != nil {
		log.Error().Err(err).Msg("create match failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create match"})
		return
	}

	c.Header("X-Match-ID", m.ID)
	c.JSON(http.StatusCreated, gin.H{
		"match_id": m.ID,
		"host_key": hostKey,
		"course":   m.Course().Name,
		"state":    m.Info().State,
	})
}

// ListMatches lists matches hosted by this instance.
func ListMatches(c *gin.Context) {
	if !managerReady(c) {
		return
	}
	matches := game.Manager.ListMatches()
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// JoinMatch adds a golfer and issues the token used to open the socket.
func JoinMatch(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !managerReady(c) {
			return
		}
		var req joinMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required (1-24 characters)"})
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required (1-24 characters)"})
			return
		}

		m, err := game.Manager.GetMatch(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		golfer, err := m.Join(ctx, game.GeneratePlayerID(), name)
		switch {
		case errors.Is(err, game.ErrMatchFull):
			c.JSON(http.StatusConflict, gin.H{"error": "match is full"})
			return
		case err != nil:
			log.Error().Err(err).Str("match", m.ID).Msg("join failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not join match"})
			return
		}

		token, exp, err := auth.IssueJoinToken(cfg.JWTSecret, m.ID, string(golfer.ID), cfg.JoinTokenTTL)
		if err != nil {
			log.Error().Err(err).Msg("issue join token failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"player_id":  golfer.ID,
			"group":      golfer.Group,
			"token":      token,
			"expires_at": exp,
		})
	}
}

// GetMatch returns a snapshot, falling back to the cached copy for matches
// hosted elsewhere.
func GetMatch(c *gin.Context) {
	if !managerReady(c) {
		return
	}
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if m, err := game.Manager.GetMatch(id); err == nil {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "match unavailable"})
			return
		}
		c.JSON(http.StatusOK, snap)
		return
	}

	snap, err := game.Manager.CachedSnapshot(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetCourse lists the holes a match is played on.
func GetCourse(c *gin.Context) {
	if !managerReady(c) {
		return
	}
	m, err := game.Manager.GetMatch(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}
	course := m.Course()
	c.JSON(http.StatusOK, gin.H{
		"name":           course.Name,
		"holes":          course.Holes,
		"total_par":      course.TotalPar(),
		"total_distance": course.TotalDistance(),
	})
}
