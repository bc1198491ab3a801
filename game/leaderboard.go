package game

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/starledger/starledger/database"
)

// LeaderboardEntry is one row of the public ranking.
type LeaderboardEntry struct {
	Login      string
	TotalScore int
}

// Leaderboard returns up to the configured number of players with the
// highest total scores, descending. The order among tied scores is
// unspecified.
func (s *Service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	users, err := s.db.TopUsersByScore(ctx, s.topSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	return lo.Map(users, func(u database.User, _ int) LeaderboardEntry {
		return LeaderboardEntry{Login: u.Login, TotalScore: u.TotalScore}
	}), nil
}
