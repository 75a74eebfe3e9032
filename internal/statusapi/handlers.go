package statusapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/internal/storage"
	"github.com/levanminh04/Network-Programming/internal/version"
)

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registration struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"displayName"`
}

type play struct {
	CardID string `json:"cardId" binding:"required"`
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/healthz", s.health)
	r.GET("/state", s.state)
	r.GET("/games", s.games)

	intents := r.Group("/intents")
	{
		intents.POST("/login", s.login)
		intents.POST("/register", s.register)
		intents.POST("/find-match", s.simple(func() actor.Input { return game.FindMatch(s.backend.NowMs()) }))
		intents.POST("/cancel-match", s.simple(game.CancelMatch))
		intents.POST("/play", s.play)
		intents.POST("/logout", s.simple(game.Logout))
		intents.POST("/leaderboard", s.simple(game.RequestLeaderboard))
		intents.POST("/lobby", s.simple(game.BackToLobby))
		intents.POST("/reconnect", s.simple(game.Reconnect))
		intents.POST("/dismiss", s.simple(game.DismissError))
	}
}

// health handles GET /healthz
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    version.Version(),
		"connection": s.backend.Connection(),
	})
}

// state handles GET /state
func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.backend.Snapshot())
}

// games handles GET /games?limit=
func (s *Server) games(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = l
	}
	games, err := s.backend.RecentGames(c.Request.Context(), limit)
	if err != nil {
		s.log.Warnf("recent games: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load games"})
		return
	}
	if games == nil {
		games = []storage.GameRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (s *Server) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.enqueue(c, game.Login(strings.TrimSpace(req.Username), req.Password))
}

func (s *Server) register(c *gin.Context) {
	var req registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.enqueue(c, game.Register(req.Username, req.Password, req.Email, req.DisplayName))
}

func (s *Server) play(c *gin.Context) {
	var req play
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.enqueue(c, game.PlayCard(req.CardID, s.backend.NowMs()))
}

func (s *Server) simple(build func() actor.Input) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.enqueue(c, build())
	}
}

func (s *Server) enqueue(c *gin.Context, in actor.Input) {
	err := s.backend.Dispatch(in)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	case errors.Is(err, actor.ErrStopped), errors.Is(err, actor.ErrMailboxFull):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
