package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/skirmish-hq/tournament-system/games"
	"github.com/skirmish-hq/tournament-system/models"
	"github.com/skirmish-hq/tournament-system/repositories"
)

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int) ([]*models.Standing, error)
	GetFormattedStandings(ctx context.Context, tournamentID int) ([]map[string]interface{}, error)
}

type standingsService struct {
	registry       *games.Registry
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
}

func NewStandingsService(
	registry *games.Registry,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		registry:       registry,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
	}
}

// GetStandings recomputes the ranking from stored matches on every call.
// Standings are never persisted, so edits and resets are reflected
// immediately.
func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]*models.Standing, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	module, err := s.registry.Get(tournament.GameSystem)
	if err != nil {
		return nil, err
	}

	var (
		players []*models.Player
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		players, loadErr = s.playerRepo.ListByTournament(gCtx, tournamentID, false)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		matches, loadErr = s.matchRepo.ListResolvedByTournament(gCtx, tournamentID)
		return loadErr
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	return module.CalculateStandings(players, matches), nil
}

func (s *standingsService) GetFormattedStandings(ctx context.Context, tournamentID int) ([]map[string]interface{}, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	module, err := s.registry.Get(tournament.GameSystem)
	if err != nil {
		return nil, err
	}

	standings, err := s.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	formatted := make([]map[string]interface{}, 0, len(standings))
	for _, standing := range standings {
		formatted = append(formatted, module.FormatStanding(standing))
	}
	return formatted, nil
}
