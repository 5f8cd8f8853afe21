package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skirmish-hq/tournament-system/games"
	"github.com/skirmish-hq/tournament-system/games/warmachine"
	"github.com/skirmish-hq/tournament-system/models"
	"github.com/skirmish-hq/tournament-system/repositories"
)

func TestBuildMatchResultCarriesMatchIdentity(t *testing.T) {
	p2, winner := 8, 8
	scenario := "Invasion"
	match := &models.Match{Player1ID: 4, Player2ID: &p2}
	input := MatchResultInput{
		WinnerID:             &winner,
		Player1ControlPoints: 2,
		Player2ControlPoints: 5,
		Player1ArmyPoints:    12,
		Player2ArmyPoints:    30,
		Scenario:             &scenario,
	}

	result := buildMatchResult(match, input)

	assert.Equal(t, 4, result.Player1ID)
	require.NotNil(t, result.Player2ID)
	assert.Equal(t, 8, *result.Player2ID)
	assert.Equal(t, 8, *result.WinnerID)
	assert.Equal(t, 5, result.Player2ControlPoints)
	assert.False(t, result.IsBye)
}

func TestBuildMatchResultMarksByes(t *testing.T) {
	match := &models.Match{Player1ID: 4}

	result := buildMatchResult(match, MatchResultInput{})

	assert.True(t, result.IsBye)
}

func TestApplyScoreCompletesMatch(t *testing.T) {
	p2, winner := 2, 1
	resultType := "scenario"
	match := &models.Match{Player1ID: 1, Player2ID: &p2, Status: models.MatchStatusPending}
	score := games.Score{
		Player1Score:         1,
		Player1ControlPoints: 5,
		Player2ControlPoints: 2,
		WinnerID:             &winner,
	}

	applyScore(match, score, MatchResultInput{ResultType: &resultType})

	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	assert.Equal(t, 1, match.Player1Score)
	assert.Equal(t, 0, match.Player2Score)
	assert.Equal(t, 5, match.Player1ControlPoints)
	require.NotNil(t, match.WinnerID)
	assert.Equal(t, 1, *match.WinnerID)
	require.NotNil(t, match.ResultType)
	assert.Equal(t, "scenario", *match.ResultType)
	require.NotNil(t, match.CompletedAt)
}

// The submit path only needs a database handle for its transaction; all
// reads and writes go through fake repositories, so a driver whose
// transactions are no-ops is enough.
type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

type noopConn struct{}

func (noopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (noopConn) Close() error                        { return nil }
func (noopConn) Begin() (driver.Tx, error)           { return noopTx{}, nil }

type noopDriver struct{}

func (noopDriver) Open(string) (driver.Conn, error) { return noopConn{}, nil }

var registerNoopDriver sync.Once

func newTestDB(t *testing.T) *sql.DB {
	registerNoopDriver.Do(func() { sql.Register("servicetest", noopDriver{}) })
	db, err := sql.Open("servicetest", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeTournamentRepo struct {
	repositories.TournamentRepository
	tournament *models.Tournament
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return f.tournament, nil
}

type fakeRoundRepo struct {
	repositories.RoundRepository
	completed []int
}

func (f *fakeRoundRepo) MarkCompleted(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	f.completed = append(f.completed, id)
	return nil
}

type fakeMatchRepo struct {
	repositories.MatchRepository
	match     *models.Match
	pending   int
	submitErr error
	submitted *models.Match
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	copied := *f.match
	return &copied, nil
}

func (f *fakeMatchRepo) SubmitResult(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = m
	return nil
}

func (f *fakeMatchRepo) CountPendingByRound(ctx context.Context, exec repositories.SQLExecutor, roundID int) (int, error) {
	return f.pending, nil
}

func pendingMatch() *models.Match {
	p2 := 2
	return &models.Match{
		ID:           30,
		RoundID:      9,
		TournamentID: 1,
		Player1ID:    1,
		Player2ID:    &p2,
		Status:       models.MatchStatusPending,
	}
}

func winningInput() MatchResultInput {
	winner := 1
	return MatchResultInput{
		WinnerID:             &winner,
		Player1ControlPoints: 5,
		Player2ControlPoints: 0,
	}
}

func newSubmitFixture(t *testing.T, matchRepo *fakeMatchRepo) (MatchService, *fakeRoundRepo) {
	registry := games.NewRegistry()
	registry.Register(warmachine.New())

	tournamentRepo := &fakeTournamentRepo{tournament: &models.Tournament{ID: 1, GameSystem: "warmachine"}}
	roundRepo := &fakeRoundRepo{}
	return NewMatchService(newTestDB(t), registry, tournamentRepo, roundRepo, matchRepo), roundRepo
}

func TestSubmitResultFinalMatchCompletesRound(t *testing.T) {
	matchRepo := &fakeMatchRepo{match: pendingMatch(), pending: 0}
	svc, roundRepo := newSubmitFixture(t, matchRepo)

	match, err := svc.SubmitResult(context.Background(), 30, winningInput())

	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	assert.Equal(t, 1, match.Player1Score)
	assert.Equal(t, 0, match.Player2Score)
	require.NotNil(t, matchRepo.submitted)
	assert.Equal(t, []int{9}, roundRepo.completed)
}

func TestSubmitResultNonFinalMatchLeavesRoundActive(t *testing.T) {
	matchRepo := &fakeMatchRepo{match: pendingMatch(), pending: 2}
	svc, roundRepo := newSubmitFixture(t, matchRepo)

	_, err := svc.SubmitResult(context.Background(), 30, winningInput())

	require.NoError(t, err)
	require.NotNil(t, matchRepo.submitted)
	assert.Empty(t, roundRepo.completed)
}

func TestSubmitResultRejectsResolvedMatch(t *testing.T) {
	resolved := pendingMatch()
	resolved.Status = models.MatchStatusCompleted
	matchRepo := &fakeMatchRepo{match: resolved}
	svc, _ := newSubmitFixture(t, matchRepo)

	_, err := svc.SubmitResult(context.Background(), 30, winningInput())

	assert.ErrorIs(t, err, ErrMatchAlreadyResolved)
	assert.Nil(t, matchRepo.submitted)
}

func TestSubmitResultRejectsBye(t *testing.T) {
	bye := pendingMatch()
	bye.Player2ID = nil
	bye.Status = models.MatchStatusBye
	matchRepo := &fakeMatchRepo{match: bye}
	svc, _ := newSubmitFixture(t, matchRepo)

	_, err := svc.SubmitResult(context.Background(), 30, winningInput())

	assert.ErrorIs(t, err, ErrByeNotScorable)
	assert.Nil(t, matchRepo.submitted)
}

func TestSubmitResultLosingConcurrentWriteIsConflict(t *testing.T) {
	// The match still reads as pending, but the guarded write reports it
	// was resolved in the meantime.
	matchRepo := &fakeMatchRepo{match: pendingMatch(), submitErr: repositories.ErrMatchNotPending}
	svc, roundRepo := newSubmitFixture(t, matchRepo)

	_, err := svc.SubmitResult(context.Background(), 30, winningInput())

	assert.ErrorIs(t, err, ErrMatchAlreadyResolved)
	assert.Empty(t, roundRepo.completed)
}

func TestSubmitResultReportsRuleViolations(t *testing.T) {
	matchRepo := &fakeMatchRepo{match: pendingMatch()}
	svc, _ := newSubmitFixture(t, matchRepo)

	// No winner and no alternate win condition.
	_, err := svc.SubmitResult(context.Background(), 30, MatchResultInput{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Violations)
	assert.Nil(t, matchRepo.submitted)
}

func TestValidationErrorUnwrapsToValidationFailed(t *testing.T) {
	err := &ValidationError{Violations: []string{"winner is required", "control points cannot be negative"}}

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "winner is required")
	assert.Contains(t, err.Error(), "control points cannot be negative")

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Len(t, validationErr.Violations, 2)
}
