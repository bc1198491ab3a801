// Package game implements the gameplay rules on top of the store: account
// registration and login, the per-level best-result ledger, total score
// aggregation, and the leaderboard.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/starledger/starledger/auth"
	"github.com/starledger/starledger/config"
	"github.com/starledger/starledger/database"
)

var (
	// ErrLoginTaken is returned when registering with an existing login.
	ErrLoginTaken = errors.New("login already taken")
	// ErrInvalidCredentials is returned when login or password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when a verified token references a user
	// that no longer exists in the store.
	ErrUserNotFound = errors.New("user not found")
)

// Session is what a player gets back from register and login.
type Session struct {
	Token      string
	TotalScore int
}

// Service implements the game rules.
type Service struct {
	db            *database.Client
	issuer        *auth.Issuer
	bcryptCost    int
	topSize       int
	tokenValidity time.Duration
}

// New creates a new game service.
func New(cfg *config.Config, db *database.Client) *Service {
	return &Service{
		db:            db,
		issuer:        auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.Validity),
		bcryptCost:    cfg.BcryptCost,
		topSize:       cfg.Leaderboard.Size,
		tokenValidity: cfg.JWT.Validity,
	}
}

// Issuer exposes the token issuer so the transport layer can verify
// presented tokens.
func (s *Service) Issuer() *auth.Issuer {
	return s.issuer
}

// Register creates a new account with a zero total score and a freshly
// issued token. The token is stored with the user and reused by Login.
func (s *Service) Register(ctx context.Context, login, password string) (*Session, error) {
	taken, err := s.db.LoginExists(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("failed to check login: %w", err)
	}
	if taken {
		return nil, ErrLoginTaken
	}

	token, err := s.issuer.Issue(login)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Informational only: verification trusts the exp claim in the token.
	expiry := time.Now().Add(s.tokenValidity)
	user := &database.User{
		Login:        login,
		PasswordHash: hash,
		Token:        token,
		TokenExpiry:  &expiry,
		TotalScore:   0,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same login.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &Session{Token: token, TotalScore: 0}, nil
}

// Login checks the password against the stored hash and returns the token
// issued at registration. Unknown logins and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	user, err := s.db.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return &Session{Token: user.Token, TotalScore: user.TotalScore}, nil
}

// resolveUser maps a verified login back to its user record.
func (s *Service) resolveUser(ctx context.Context, login string) (*database.User, error) {
	user, err := s.db.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
