// Package api wires the gin router around the game service.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/starledger/starledger/api/cache"
	"github.com/starledger/starledger/api/handler"
	"github.com/starledger/starledger/config"
	"github.com/starledger/starledger/game"
)

// Server is the HTTP server serving the game API.
type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	game         *game.Service
	cacheManager *cache.Manager
	httpServer   *http.Server
}

// New creates a new API server.
func New(cfg *config.Config, svc *game.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	gin.SetMode(gin.ReleaseMode)

	return &Server{
		cfg:          cfg,
		ginEngine:    gin.Default(),
		game:         svc,
		cacheManager: cache.NewManager(cfg.Leaderboard.CacheTTL),
	}, nil
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	h := handler.New(s.game, s.cacheManager)

	s.ginEngine.GET("/healthz", h.Health)

	auth := s.ginEngine.Group("/api/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	// Game routes. The token travels in the request body, so identity is
	// checked per handler rather than in a middleware. The leaderboard is
	// public and needs no token at all.
	gameGroup := s.ginEngine.Group("/api/game")
	gameGroup.POST("/get-progress", h.GetProgress)
	gameGroup.POST("/save-progress", h.SaveProgress)
	gameGroup.GET("/leaderboard", h.Leaderboard)
}

// Run starts the server and blocks until it stops or Shutdown is called.
func (s *Server) Run() error {
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.ginEngine,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
