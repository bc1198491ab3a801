// Package handler maps HTTP requests onto the game service and game errors
// onto status codes. Error bodies carry fixed messages only; internal detail
// never reaches the caller.
package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/starledger/starledger/api/cache"
	"github.com/starledger/starledger/api/models"
	"github.com/starledger/starledger/game"
)

// Handler holds the handlers for all API endpoints.
type Handler struct {
	game  *game.Service
	cache *cache.Manager
}

// New creates a new handler.
func New(svc *game.Service, cacheManager *cache.Manager) *Handler {
	return &Handler{
		game:  svc,
		cache: cacheManager,
	}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.game.Register(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, game.ErrLoginTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "login already taken"})
			return
		}
		log.Error("register failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		Token:      session.Token,
		TotalScore: session.TotalScore,
	})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.game.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, game.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error("login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		Token:      session.Token,
		TotalScore: session.TotalScore,
	})
}

// GetProgress handles POST /api/game/get-progress.
func (h *Handler) GetProgress(c *gin.Context) {
	var req models.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	login, err := h.game.Issuer().Verify(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	snapshot, err := h.game.Progress(c.Request.Context(), login)
	if err != nil {
		h.gameError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProgressResponse{
		TotalStars: snapshot.TotalStars,
		TotalScore: snapshot.TotalScore,
		Levels: lo.Map(snapshot.Levels, func(l game.LevelResult, _ int) models.LevelProgressResponse {
			return models.LevelProgressResponse{
				LevelBuildIndex: l.LevelBuildIndex,
				StarsCollected:  l.StarsCollected,
				Score:           l.Score,
			}
		}),
	})
}

// SaveProgress handles POST /api/game/save-progress.
func (h *Handler) SaveProgress(c *gin.Context) {
	var req models.SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	login, err := h.game.Issuer().Verify(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	result, err := h.game.SubmitProgress(c.Request.Context(), login, req.LevelBuildIndex, req.StarsCollected, req.Score)
	if err != nil {
		h.gameError(c, err)
		return
	}

	if result.Accepted {
		h.cache.Invalidate()
	}

	c.JSON(http.StatusOK, models.SaveProgressResponse{
		Success:    true,
		TotalScore: result.TotalScore,
	})
}

// Leaderboard handles GET /api/game/leaderboard.
func (h *Handler) Leaderboard(c *gin.Context) {
	if entries, found := h.cache.GetLeaderboard(); found {
		c.JSON(http.StatusOK, entries)
		return
	}

	leaderboard, err := h.game.Leaderboard(c.Request.Context())
	if err != nil {
		log.Error("leaderboard failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	entries := lo.Map(leaderboard, func(e game.LeaderboardEntry, _ int) models.LeaderboardEntryResponse {
		return models.LeaderboardEntryResponse{Login: e.Login, TotalScore: e.TotalScore}
	})
	h.cache.SetLeaderboard(entries)

	c.JSON(http.StatusOK, entries)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// gameError maps service errors from the game endpoints to status codes.
func (h *Handler) gameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		log.Error("game request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
