package game

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/starledger/starledger/config"
	"github.com/starledger/starledger/database"
)

type ServiceTestSuite struct {
	suite.Suite
	db  *database.Client
	svc *Service
	ctx context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	db, err := database.New(filepath.Join(s.T().TempDir(), "test.db"))
	s.Require().NoError(err)

	s.db = db
	s.svc = New(testConfig(), db)
	s.ctx = context.Background()
}

func (s *ServiceTestSuite) TearDownTest() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Listen: "127.0.0.1:0",
		// MinCost keeps the hashing out of the test runtime.
		BcryptCost:  bcrypt.MinCost,
		Database:    &config.DatabaseConfig{Path: ":memory:"},
		JWT:         &config.JWTConfig{Secret: "test-secret", Validity: time.Hour},
		Leaderboard: &config.LeaderboardConfig{Size: 3, CacheTTL: time.Minute},
	}
}

func (s *ServiceTestSuite) register(login string) *Session {
	session, err := s.svc.Register(s.ctx, login, "password-"+login)
	s.Require().NoError(err)
	return session
}

func (s *ServiceTestSuite) submit(login string, level, stars, score int) *SubmitResult {
	result, err := s.svc.SubmitProgress(s.ctx, login, level, stars, score)
	s.Require().NoError(err)
	return result
}

func (s *ServiceTestSuite) TestRegister() {
	session := s.register("alice")

	s.NotEmpty(session.Token)
	s.Zero(session.TotalScore)

	login, err := s.svc.Issuer().Verify(session.Token)
	s.Require().NoError(err)
	s.Equal("alice", login)
}

func (s *ServiceTestSuite) TestRegister_DuplicateLogin() {
	s.register("bob")

	_, err := s.svc.Register(s.ctx, "bob", "other-password")
	s.ErrorIs(err, ErrLoginTaken)
}

func (s *ServiceTestSuite) TestLogin_ReturnsStoredToken() {
	registered := s.register("alice")

	session, err := s.svc.Login(s.ctx, "alice", "password-alice")
	s.Require().NoError(err)

	// Login reuses the token issued at registration, it never rotates.
	s.Equal(registered.Token, session.Token)
	s.Zero(session.TotalScore)
}

func (s *ServiceTestSuite) TestLogin_WrongPassword() {
	s.register("alice")

	_, err := s.svc.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceTestSuite) TestLogin_UnknownLogin() {
	_, err := s.svc.Login(s.ctx, "nobody", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceTestSuite) TestSubmitProgress_UnknownUser() {
	_, err := s.svc.SubmitProgress(s.ctx, "ghost", 1, 1, 10)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestSubmitProgress_FirstSubmission() {
	s.register("alice")

	result := s.submit("alice", 1, 2, 100)

	s.True(result.Accepted)
	s.Equal(100, result.TotalScore)
}

func (s *ServiceTestSuite) TestSubmitProgress_WorseResultRejected() {
	s.register("alice")
	s.submit("alice", 1, 2, 100)

	result := s.submit("alice", 1, 1, 50)

	s.False(result.Accepted)
	s.Equal(100, result.TotalScore)

	snapshot, err := s.svc.Progress(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]LevelResult{{LevelBuildIndex: 1, StarsCollected: 2, Score: 100}}, snapshot.Levels)
}

func (s *ServiceTestSuite) TestSubmitProgress_MoreStarsLowerScoreRejected() {
	// The improvement test is score-only; extra stars don't win.
	s.register("alice")
	s.submit("alice", 1, 1, 100)

	result := s.submit("alice", 1, 3, 90)

	s.False(result.Accepted)
	s.Equal(100, result.TotalScore)
}

func (s *ServiceTestSuite) TestSubmitProgress_ImprovementReplacesStarsAndScore() {
	s.register("alice")
	s.submit("alice", 1, 3, 100)

	result := s.submit("alice", 1, 1, 150)

	s.True(result.Accepted)
	s.Equal(150, result.TotalScore)

	snapshot, err := s.svc.Progress(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]LevelResult{{LevelBuildIndex: 1, StarsCollected: 1, Score: 150}}, snapshot.Levels)
}

func (s *ServiceTestSuite) TestSubmitProgress_DuplicateIsNoOp() {
	s.register("alice")
	first := s.submit("alice", 1, 2, 100)
	second := s.submit("alice", 1, 2, 100)

	s.True(first.Accepted)
	s.False(second.Accepted)
	s.Equal(first.TotalScore, second.TotalScore)
}

func (s *ServiceTestSuite) TestSubmitProgress_TotalAggregatesAcrossLevels() {
	s.register("alice")

	s.Equal(100, s.submit("alice", 1, 2, 100).TotalScore)
	s.Equal(300, s.submit("alice", 2, 3, 200).TotalScore)
	s.Equal(350, s.submit("alice", 3, 1, 50).TotalScore)

	// The stored total always equals the sum over the ledger.
	snapshot, err := s.svc.Progress(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(350, snapshot.TotalScore)
	s.Equal(6, snapshot.TotalStars)
	s.Len(snapshot.Levels, 3)
}

func (s *ServiceTestSuite) TestSubmitProgress_TotalIsMonotonic() {
	s.register("alice")

	prev := 0
	for _, sub := range []struct{ level, stars, score int }{
		{1, 2, 100},
		{1, 1, 50},
		{2, 3, 200},
		{1, 3, 120},
		{2, 0, 10},
		{3, 2, 80},
	} {
		result := s.submit("alice", sub.level, sub.stars, sub.score)
		s.GreaterOrEqual(result.TotalScore, prev)
		prev = result.TotalScore
	}
	s.Equal(400, prev)
}

func (s *ServiceTestSuite) TestSubmitProgress_ConcurrentLevels() {
	s.register("alice")

	// Every submission targets its own level, so all of them must land and
	// the recomputed total must cover all of them.
	const levels = 10
	var wg sync.WaitGroup
	errs := make(chan error, levels)
	for i := 1; i <= levels; i++ {
		wg.Add(1)
		go func(level int) {
			defer wg.Done()
			_, err := s.svc.SubmitProgress(s.ctx, "alice", level, 1, 100)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	snapshot, err := s.svc.Progress(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(snapshot.Levels, levels)
	s.Equal(levels*100, snapshot.TotalScore)
	s.Equal(snapshot.TotalScore, lo.SumBy(snapshot.Levels, func(l LevelResult) int { return l.Score }))
}

func (s *ServiceTestSuite) TestProgress_EmptySnapshot() {
	s.register("alice")

	snapshot, err := s.svc.Progress(s.ctx, "alice")
	s.Require().NoError(err)

	s.Zero(snapshot.TotalStars)
	s.Zero(snapshot.TotalScore)
	s.Empty(snapshot.Levels)
}

func (s *ServiceTestSuite) TestProgress_UnknownUser() {
	_, err := s.svc.Progress(s.ctx, "ghost")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestLeaderboard_SingleUser() {
	s.register("alice")
	s.submit("alice", 1, 2, 100)
	s.submit("alice", 2, 3, 200)

	entries, err := s.svc.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal([]LeaderboardEntry{{Login: "alice", TotalScore: 300}}, entries)
}

func (s *ServiceTestSuite) TestLeaderboard_TopNDescending() {
	for i, login := range []string{"alice", "bob", "carol", "dave"} {
		s.register(login)
		s.submit(login, 1, 1, (i+1)*100)
	}

	entries, err := s.svc.Leaderboard(s.ctx)
	s.Require().NoError(err)

	s.Len(entries, 3)
	s.Equal([]LeaderboardEntry{
		{Login: "dave", TotalScore: 400},
		{Login: "carol", TotalScore: 300},
		{Login: "bob", TotalScore: 200},
	}, entries)
}

func (s *ServiceTestSuite) TestLeaderboard_TiedScoresAreSetEqual() {
	s.register("alice")
	s.register("bob")
	s.submit("alice", 1, 1, 100)
	s.submit("bob", 1, 1, 100)

	entries, err := s.svc.Leaderboard(s.ctx)
	s.Require().NoError(err)

	// Tie order is unspecified, assert membership only.
	s.Len(entries, 2)
	logins := []string{entries[0].Login, entries[1].Login}
	s.ElementsMatch([]string{"alice", "bob"}, logins)
	s.Equal(100, entries[0].TotalScore)
	s.Equal(100, entries[1].TotalScore)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
