package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// CreateUser inserts a new user record. It returns gorm.ErrDuplicatedKey
// semantics through the driver when the login or token is already taken.
func (c *Client) CreateUser(ctx context.Context, user *User) error {
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		log.Error("failed to create user", "login", user.Login, "error", err)
		return err
	}
	return nil
}

// GetUserByLogin returns the user with the given login, or
// gorm.ErrRecordNotFound.
func (c *Client) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by login", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// LoginExists reports whether a user with the given login already exists.
func (c *Client) LoginExists(ctx context.Context, login string) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&User{}).Where("login = ?", login).Count(&count).Error; err != nil {
		log.Error("failed to check login", "error", err)
		return false, err
	}
	return count > 0, nil
}

// TopUsersByScore returns up to limit users ordered by total score, highest
// first. The order among equal scores is whatever the store returns.
func (c *Client) TopUsersByScore(ctx context.Context, limit int) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).
		Order("total_score DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		log.Error("failed to query leaderboard", "error", err)
		return nil, err
	}
	return users, nil
}
