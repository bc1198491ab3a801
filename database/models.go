package database

import (
	"time"

	"gorm.io/gorm"
)

// User represents a player account.
// TotalScore is derived state: it always equals the sum of the score column
// over the user's level progress rows and is rewritten after every accepted
// submission.
type User struct {
	gorm.Model
	Login        string `gorm:"uniqueIndex;not null;size:50"`
	PasswordHash string `gorm:"not null;size:64"`
	// Token is issued once at registration and never rotated.
	Token           string `gorm:"uniqueIndex;not null"`
	TokenExpiry     *time.Time
	TotalScore      int             `gorm:"not null;default:0"`
	LevelProgresses []LevelProgress `gorm:"constraint:OnDelete:CASCADE;"`
}

// LevelProgress is the best known result for one user on one level.
// At most one row exists per (user, level); the composite unique index backs
// up the upsert logic in the game service.
type LevelProgress struct {
	gorm.Model
	LevelBuildIndex int  `gorm:"not null;uniqueIndex:idx_user_level"`
	StarsCollected  int  `gorm:"not null"`
	Score           int  `gorm:"not null"`
	UserID          uint `gorm:"not null;uniqueIndex:idx_user_level"`
}
