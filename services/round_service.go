package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/skirmish-hq/tournament-system/models"
	"github.com/skirmish-hq/tournament-system/repositories"
	"github.com/skirmish-hq/tournament-system/swiss"
)

type RoundService interface {
	CreateRound(ctx context.Context, tournamentID int) (*models.Round, error)
	GetRound(ctx context.Context, tournamentID, roundNumber int) (*models.Round, error)
	ListRounds(ctx context.Context, tournamentID int) ([]models.Round, error)
	DeleteRound(ctx context.Context, tournamentID, roundNumber int) error
}

type roundService struct {
	db             *sql.DB
	engine         *swiss.Engine
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
}

func NewRoundService(
	db *sql.DB,
	engine *swiss.Engine,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
) RoundService {
	return &roundService{
		db:             db,
		engine:         engine,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
	}
}

// validateRoundCreation checks the tournament-side preconditions for
// opening round nextRound. Round 1 may open straight out of registration;
// later rounds require an active tournament.
func validateRoundCreation(t *models.Tournament, nextRound int) error {
	if nextRound > t.TotalRounds {
		return ErrAllRoundsPlayed
	}
	if nextRound == 1 {
		if t.Status != models.StatusRegistration && t.Status != models.StatusActive {
			return fmt.Errorf("%w: status is %s", ErrTournamentNotActive, t.Status)
		}
		return nil
	}
	if t.Status != models.StatusActive {
		return fmt.Errorf("%w: status is %s", ErrTournamentNotActive, t.Status)
	}
	return nil
}

func (s *roundService) CreateRound(ctx context.Context, tournamentID int) (*models.Round, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	nextRound := tournament.CurrentRound + 1
	if err = validateRoundCreation(tournament, nextRound); err != nil {
		return nil, err
	}

	if tournament.CurrentRound > 0 {
		current, getErr := s.roundRepo.GetByNumber(ctx, tournamentID, tournament.CurrentRound)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load round %d of tournament %d: %w", tournament.CurrentRound, tournamentID, getErr)
		}
		if current.Status != models.RoundStatusCompleted {
			return nil, fmt.Errorf("%w: round %d is still %s", ErrInvalidRoundSequence, current.RoundNumber, current.Status)
		}
	}

	players, err := s.playerRepo.ListByTournament(ctx, tournamentID, true)
	if err != nil {
		return nil, err
	}
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientPlayers, len(players))
	}

	history, err := s.matchRepo.ListResolvedByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	pairings := s.engine.GeneratePairings(players, history, nextRound)
	for _, problem := range swiss.ValidatePairings(pairings, players, history) {
		log.Printf("pairing check, tournament %d round %d: %s", tournamentID, nextRound, problem)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("rollback failed for tournament %d round %d: %v", tournamentID, nextRound, rbErr)
			}
		}
	}()

	round := &models.Round{
		TournamentID: tournamentID,
		RoundNumber:  nextRound,
		Status:       models.RoundStatusActive,
	}
	if txErr = s.roundRepo.Create(ctx, tx, round); txErr != nil {
		return nil, txErr
	}

	for _, pairing := range pairings {
		match := models.Match{
			RoundID:      round.ID,
			TournamentID: tournamentID,
			TableNumber:  pairing.TableNumber,
			Player1ID:    pairing.Player1ID,
			Player2ID:    pairing.Player2ID,
			Status:       models.MatchStatusPending,
		}
		if pairing.IsBye {
			now := time.Now().UTC()
			winner := pairing.Player1ID
			match.Status = models.MatchStatusBye
			match.WinnerID = &winner
			match.Player1Score = 1
			match.CompletedAt = &now
		}
		if txErr = s.matchRepo.Create(ctx, tx, &match); txErr != nil {
			return nil, txErr
		}
		round.Matches = append(round.Matches, match)
	}

	if txErr = s.tournamentRepo.UpdateCurrentRound(ctx, tx, tournamentID, nextRound); txErr != nil {
		return nil, txErr
	}
	if nextRound == 1 && tournament.Status != models.StatusActive {
		if txErr = s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusActive); txErr != nil {
			return nil, txErr
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit round %d for tournament %d: %w", nextRound, tournamentID, txErr)
	}
	return round, nil
}

func (s *roundService) GetRound(ctx context.Context, tournamentID, roundNumber int) (*models.Round, error) {
	round, err := s.roundRepo.GetByNumber(ctx, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	round.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		round.Matches = append(round.Matches, *m)
	}
	return round, nil
}

func (s *roundService) ListRounds(ctx context.Context, tournamentID int) ([]models.Round, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	rounds := make([]models.Round, 0, tournament.CurrentRound)
	for number := 1; number <= tournament.CurrentRound; number++ {
		round, getErr := s.GetRound(ctx, tournamentID, number)
		if getErr != nil {
			if errors.Is(getErr, repositories.ErrRoundNotFound) {
				continue
			}
			return nil, getErr
		}
		rounds = append(rounds, *round)
	}
	return rounds, nil
}

// DeleteRound removes a round and its matches. Only the latest round may
// be deleted, so history behind later pairings never disappears.
func (s *roundService) DeleteRound(ctx context.Context, tournamentID, roundNumber int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if roundNumber != tournament.CurrentRound {
		return fmt.Errorf("%w: only the latest round (%d) can be deleted", ErrInvalidRoundSequence, tournament.CurrentRound)
	}

	round, err := s.roundRepo.GetByNumber(ctx, tournamentID, roundNumber)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("rollback failed deleting round %d of tournament %d: %v", roundNumber, tournamentID, rbErr)
			}
		}
	}()

	if txErr = s.matchRepo.DeleteByRound(ctx, tx, round.ID); txErr != nil {
		return txErr
	}
	if txErr = s.roundRepo.Delete(ctx, tx, round.ID); txErr != nil {
		return txErr
	}
	if txErr = s.tournamentRepo.UpdateCurrentRound(ctx, tx, tournamentID, tournament.CurrentRound-1); txErr != nil {
		return txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit round deletion: %w", txErr)
	}
	return nil
}
