package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Transaction runs fn against a transactional client. Everything fn does
// either commits as one unit or rolls back.
func (c *Client) Transaction(ctx context.Context, fn func(tx *Client) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Client{db: tx})
	})
}

// GetLevelProgress returns the progress row for (userID, levelBuildIndex),
// or gorm.ErrRecordNotFound.
func (c *Client) GetLevelProgress(ctx context.Context, userID uint, levelBuildIndex int) (*LevelProgress, error) {
	var progress LevelProgress
	if err := c.db.WithContext(ctx).
		Where("user_id = ? AND level_build_index = ?", userID, levelBuildIndex).
		First(&progress).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get level progress", "userID", userID, "level", levelBuildIndex, "error", err)
		}
		return nil, err
	}
	return &progress, nil
}

// ListLevelProgress returns all progress rows for a user, ordered by level.
func (c *Client) ListLevelProgress(ctx context.Context, userID uint) ([]LevelProgress, error) {
	var progresses []LevelProgress
	if err := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("level_build_index ASC").
		Find(&progresses).Error; err != nil {
		log.Error("failed to list level progress", "userID", userID, "error", err)
		return nil, err
	}
	return progresses, nil
}

// CreateLevelProgress inserts a new progress row.
func (c *Client) CreateLevelProgress(ctx context.Context, progress *LevelProgress) error {
	if err := c.db.WithContext(ctx).Create(progress).Error; err != nil {
		log.Error("failed to create level progress", "userID", progress.UserID, "level", progress.LevelBuildIndex, "error", err)
		return err
	}
	return nil
}

// UpdateLevelProgress overwrites the stars and score of an existing row.
func (c *Client) UpdateLevelProgress(ctx context.Context, progress *LevelProgress) error {
	if err := c.db.WithContext(ctx).
		Model(progress).
		Updates(map[string]any{
			"stars_collected": progress.StarsCollected,
			"score":           progress.Score,
		}).Error; err != nil {
		log.Error("failed to update level progress", "userID", progress.UserID, "level", progress.LevelBuildIndex, "error", err)
		return err
	}
	return nil
}

// SumScores returns the sum of the score column over a user's progress rows.
// A user with no rows sums to zero.
func (c *Client) SumScores(ctx context.Context, userID uint) (int, error) {
	var total int
	if err := c.db.WithContext(ctx).
		Model(&LevelProgress{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(score), 0)").
		Scan(&total).Error; err != nil {
		log.Error("failed to sum scores", "userID", userID, "error", err)
		return 0, err
	}
	return total, nil
}

// SetTotalScore writes the recomputed total into the user record.
func (c *Client) SetTotalScore(ctx context.Context, userID uint, total int) error {
	if err := c.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", userID).
		Update("total_score", total).Error; err != nil {
		log.Error("failed to set total score", "userID", userID, "error", err)
		return err
	}
	return nil
}
