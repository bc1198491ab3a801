// Package models defines the JSON request and response bodies of the API.
package models

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Login    string `json:"login" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=64"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=64"`
}

// SessionResponse is returned by both auth endpoints.
type SessionResponse struct {
	Token      string `json:"token"`
	TotalScore int    `json:"totalScore"`
}

// ProgressRequest is the body of POST /api/game/get-progress.
type ProgressRequest struct {
	Token string `json:"token" binding:"required"`
}

// SaveProgressRequest is the body of POST /api/game/save-progress.
// LevelBuildIndex is an opaque level identifier and is not range checked.
type SaveProgressRequest struct {
	Token           string `json:"token" binding:"required"`
	LevelBuildIndex int    `json:"levelBuildIndex"`
	StarsCollected  int    `json:"starsCollected" binding:"gte=0"`
	Score           int    `json:"score" binding:"gte=0"`
}

// LevelProgressResponse is one level entry in a progress response.
type LevelProgressResponse struct {
	LevelBuildIndex int `json:"levelBuildIndex"`
	StarsCollected  int `json:"starsCollected"`
	Score           int `json:"score"`
}

// ProgressResponse is the body returned by get-progress.
type ProgressResponse struct {
	TotalStars int                     `json:"totalStars"`
	TotalScore int                     `json:"totalScore"`
	Levels     []LevelProgressResponse `json:"levels"`
}

// SaveProgressResponse is the body returned by save-progress.
type SaveProgressResponse struct {
	Success    bool `json:"success"`
	TotalScore int  `json:"totalScore"`
}

// LeaderboardEntryResponse is one row of the public leaderboard.
type LeaderboardEntryResponse struct {
	Login      string `json:"login"`
	TotalScore int    `json:"totalScore"`
}
