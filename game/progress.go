package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/starledger/starledger/database"
)

// LevelResult is one level's best result in a progress snapshot.
type LevelResult struct {
	LevelBuildIndex int
	StarsCollected  int
	Score           int
}

// Snapshot is a player's full progress: every per-level best plus the
// aggregated totals.
type Snapshot struct {
	TotalStars int
	TotalScore int
	Levels     []LevelResult
}

// SubmitResult is the outcome of a progress submission.
type SubmitResult struct {
	// Accepted is true when the submission created or improved a ledger row.
	Accepted   bool
	TotalScore int
}

// Progress returns the snapshot for the given login.
func (s *Service) Progress(ctx context.Context, login string) (*Snapshot, error) {
	user, err := s.resolveUser(ctx, login)
	if err != nil {
		return nil, err
	}

	progresses, err := s.db.ListLevelProgress(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	levels := lo.Map(progresses, func(p database.LevelProgress, _ int) LevelResult {
		return LevelResult{
			LevelBuildIndex: p.LevelBuildIndex,
			StarsCollected:  p.StarsCollected,
			Score:           p.Score,
		}
	})

	return &Snapshot{
		TotalStars: lo.SumBy(levels, func(l LevelResult) int { return l.StarsCollected }),
		TotalScore: user.TotalScore,
		Levels:     levels,
	}, nil
}

// SubmitProgress records a level result for the given login. A first
// submission for a level is stored verbatim; a later one replaces the stored
// stars and score only when its score is strictly greater. Whenever the
// ledger changes, the user's total score is recomputed as the sum of their
// per-level scores. The upsert and the recompute commit as one transaction,
// so concurrent submissions for different levels cannot lose an update in
// the total.
func (s *Service) SubmitProgress(ctx context.Context, login string, levelBuildIndex, starsCollected, score int) (*SubmitResult, error) {
	user, err := s.resolveUser(ctx, login)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{TotalScore: user.TotalScore}

	err = s.db.Transaction(ctx, func(tx *database.Client) error {
		existing, err := tx.GetLevelProgress(ctx, user.ID, levelBuildIndex)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.CreateLevelProgress(ctx, &database.LevelProgress{
				UserID:          user.ID,
				LevelBuildIndex: levelBuildIndex,
				StarsCollected:  starsCollected,
				Score:           score,
			}); err != nil {
				return fmt.Errorf("failed to create progress: %w", err)
			}
			result.Accepted = true

		case err != nil:
			return fmt.Errorf("failed to get progress: %w", err)

		case score > existing.Score:
			existing.StarsCollected = starsCollected
			existing.Score = score
			if err := tx.UpdateLevelProgress(ctx, existing); err != nil {
				return fmt.Errorf("failed to update progress: %w", err)
			}
			result.Accepted = true
		}

		if !result.Accepted {
			// Nothing changed, skip the redundant aggregation write.
			return nil
		}

		total, err := tx.SumScores(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to sum scores: %w", err)
		}
		if err := tx.SetTotalScore(ctx, user.ID, total); err != nil {
			return fmt.Errorf("failed to set total score: %w", err)
		}
		result.TotalScore = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
