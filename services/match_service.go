package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/skirmish-hq/tournament-system/games"
	"github.com/skirmish-hq/tournament-system/models"
	"github.com/skirmish-hq/tournament-system/repositories"
)

// MatchResultInput is an organizer's result submission for one match.
type MatchResultInput struct {
	WinnerID             *int    `json:"winner_id"`
	Player1ControlPoints int     `json:"player1_control_points"`
	Player2ControlPoints int     `json:"player2_control_points"`
	Player1ArmyPoints    int     `json:"player1_army_points"`
	Player2ArmyPoints    int     `json:"player2_army_points"`
	Scenario             *string `json:"scenario,omitempty"`
	ResultType           *string `json:"result_type,omitempty"`
}

type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	SubmitResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error)
	EditResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error)
	ResetResult(ctx context.Context, matchID int) (*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	registry       *games.Registry
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
}

func NewMatchService(
	db *sql.DB,
	registry *games.Registry,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
) MatchService {
	return &matchService{
		db:             db,
		registry:       registry,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	return s.matchRepo.GetByID(ctx, matchID)
}

// buildMatchResult joins a stored match with a submission into the input a
// game module validates and scores.
func buildMatchResult(match *models.Match, input MatchResultInput) games.MatchResult {
	return games.MatchResult{
		Player1ID:            match.Player1ID,
		Player2ID:            match.Player2ID,
		WinnerID:             input.WinnerID,
		Player1ControlPoints: input.Player1ControlPoints,
		Player2ControlPoints: input.Player2ControlPoints,
		Player1ArmyPoints:    input.Player1ArmyPoints,
		Player2ArmyPoints:    input.Player2ArmyPoints,
		Scenario:             input.Scenario,
		ResultType:           input.ResultType,
		IsBye:                match.IsBye(),
	}
}

// applyScore writes a module's canonical score onto the match record and
// marks it completed.
func applyScore(match *models.Match, score games.Score, input MatchResultInput) {
	now := time.Now().UTC()
	match.Status = models.MatchStatusCompleted
	match.WinnerID = score.WinnerID
	match.Player1Score = score.Player1Score
	match.Player2Score = score.Player2Score
	match.Player1ControlPoints = score.Player1ControlPoints
	match.Player2ControlPoints = score.Player2ControlPoints
	match.Player1ArmyPoints = score.Player1ArmyPoints
	match.Player2ArmyPoints = score.Player2ArmyPoints
	match.Scenario = input.Scenario
	match.ResultType = input.ResultType
	match.CompletedAt = &now
}

func (s *matchService) validateAndScore(ctx context.Context, match *models.Match, input MatchResultInput) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return err
	}
	module, err := s.registry.Get(tournament.GameSystem)
	if err != nil {
		return err
	}

	result := buildMatchResult(match, input)
	if validation := module.ValidateMatchResult(result); !validation.Valid {
		return &ValidationError{Violations: validation.Errors}
	}
	applyScore(match, module.CalculateMatchScore(result), input)
	return nil
}

// SubmitResult records the first result of a pending match. When this was
// the round's last open match, the round is completed in the same
// transaction.
func (s *matchService) SubmitResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusBye {
		return nil, ErrByeNotScorable
	}
	if match.Resolved() {
		return nil, ErrMatchAlreadyResolved
	}

	if err = s.validateAndScore(ctx, match, input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("rollback failed submitting result for match %d: %v", matchID, rbErr)
			}
		}
	}()

	// The status-guarded write decides the race between concurrent
	// submissions; the pre-check above only gives friendlier errors.
	if txErr = s.matchRepo.SubmitResult(ctx, tx, match); txErr != nil {
		if errors.Is(txErr, repositories.ErrMatchNotPending) {
			txErr = ErrMatchAlreadyResolved
		}
		return nil, txErr
	}

	pending, txErr := s.matchRepo.CountPendingByRound(ctx, tx, match.RoundID)
	if txErr != nil {
		return nil, txErr
	}
	if pending == 0 {
		if txErr = s.roundRepo.MarkCompleted(ctx, tx, match.RoundID); txErr != nil {
			return nil, txErr
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit result for match %d: %w", matchID, txErr)
	}
	return match, nil
}

// EditResult revalidates and replaces the result of an already completed
// match. Standings are derived, so no recalculation step is needed; byes
// carry no submittable result and stay untouched.
func (s *matchService) EditResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrMatchNotEditable, match.Status)
	}

	if err = s.validateAndScore(ctx, match, input); err != nil {
		return nil, err
	}
	if err = s.matchRepo.UpdateResult(ctx, s.db, match); err != nil {
		return nil, err
	}
	return match, nil
}

// ResetResult reverts a completed match to pending. Allowed only while the
// round is still active; once a round has completed its results feed the
// next round's pairings.
func (s *matchService) ResetResult(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrMatchNotEditable, match.Status)
	}

	round, err := s.roundRepo.GetByID(ctx, match.RoundID)
	if err != nil {
		return nil, err
	}
	if round.Status == models.RoundStatusCompleted {
		return nil, ErrRoundAlreadyCompleted
	}

	if err = s.matchRepo.ResetResult(ctx, s.db, matchID); err != nil {
		return nil, err
	}
	return s.matchRepo.GetByID(ctx, matchID)
}
