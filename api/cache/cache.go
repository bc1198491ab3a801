// Package cache keeps the leaderboard response out of the hot path. The
// leaderboard is public and read far more often than totals change, so the
// rendered response is cached for a short TTL and dropped whenever a
// submission is accepted.
package cache

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"

	"github.com/starledger/starledger/api/models"
)

const leaderboardKey = "leaderboard"

// Manager wraps the cache with convenience methods for the leaderboard.
type Manager struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewManager creates a cache manager with the given TTL.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// GetLeaderboard retrieves the cached leaderboard, if present.
func (m *Manager) GetLeaderboard() ([]models.LeaderboardEntryResponse, bool) {
	if data, found := m.cache.Get(leaderboardKey); found {
		if entries, ok := data.([]models.LeaderboardEntryResponse); ok {
			log.Debug("Cache hit for leaderboard")
			return entries, true
		}
	}
	log.Debug("Cache miss for leaderboard")
	return nil, false
}

// SetLeaderboard stores the leaderboard in cache.
func (m *Manager) SetLeaderboard(entries []models.LeaderboardEntryResponse) {
	m.cache.Set(leaderboardKey, entries, m.ttl)
	log.Debug("Cache set for leaderboard", "ttl", m.ttl)
}

// Invalidate removes the cached leaderboard.
func (m *Manager) Invalidate() {
	m.cache.Delete(leaderboardKey)
	log.Debug("Cache cleared for leaderboard")
}
