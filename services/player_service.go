package services

import (
	"context"
	"fmt"

	"github.com/skirmish-hq/tournament-system/models"
	"github.com/skirmish-hq/tournament-system/repositories"
)

type RegisterPlayerInput struct {
	Faction  *string `json:"faction,omitempty"`
	ListName *string `json:"list_name,omitempty"`
}

type PlayerService interface {
	Register(ctx context.Context, tournamentID, userID int, input RegisterPlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, playerID int) (*models.Player, error)
	ListByTournament(ctx context.Context, tournamentID int, activeOnly bool) ([]*models.Player, error)
	UpdateProfile(ctx context.Context, playerID int, input RegisterPlayerInput) (*models.Player, error)
	Drop(ctx context.Context, playerID int) (*models.Player, error)
	Unregister(ctx context.Context, playerID int) error
}

type playerService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
}

func NewPlayerService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
) PlayerService {
	return &playerService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
	}
}

// Register signs a user up before the event starts. Registration closes
// the moment round 1 is paired.
func (s *playerService) Register(ctx context.Context, tournamentID, userID int, input RegisterPlayerInput) (*models.Player, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusDraft && tournament.Status != models.StatusRegistration {
		return nil, fmt.Errorf("%w: status is %s", ErrRegistrationNotOpen, tournament.Status)
	}

	count, err := s.playerRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if count >= tournament.MaxPlayers {
		return nil, ErrTournamentFull
	}

	player := &models.Player{
		TournamentID: tournamentID,
		UserID:       userID,
		Faction:      input.Faction,
		ListName:     input.ListName,
	}
	if err = s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}
	return s.playerRepo.GetByID(ctx, player.ID)
}

func (s *playerService) GetByID(ctx context.Context, playerID int) (*models.Player, error) {
	return s.playerRepo.GetByID(ctx, playerID)
}

func (s *playerService) ListByTournament(ctx context.Context, tournamentID int, activeOnly bool) ([]*models.Player, error) {
	return s.playerRepo.ListByTournament(ctx, tournamentID, activeOnly)
}

func (s *playerService) UpdateProfile(ctx context.Context, playerID int, input RegisterPlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if input.Faction != nil {
		player.Faction = input.Faction
	}
	if input.ListName != nil {
		player.ListName = input.ListName
	}
	if err = s.playerRepo.UpdateProfile(ctx, playerID, player.Faction, player.ListName); err != nil {
		return nil, err
	}
	return player, nil
}

// Drop withdraws a player mid-event. The record of played rounds stays;
// the pairing engine simply stops seeing them.
func (s *playerService) Drop(ctx context.Context, playerID int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.Dropped {
		return nil, ErrPlayerAlreadyDropped
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, player.TournamentID)
	if err != nil {
		return nil, err
	}

	if err = s.playerRepo.Drop(ctx, playerID, tournament.CurrentRound); err != nil {
		return nil, err
	}
	player.Dropped = true
	dropRound := tournament.CurrentRound
	player.DropRound = &dropRound
	return player, nil
}

// Unregister removes a registration entirely. Once a player has been
// paired into a match their row is referenced by history and they can
// only drop.
func (s *playerService) Unregister(ctx context.Context, playerID int) error {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return err
	}

	played, err := s.playerRepo.CountMatchesByPlayer(ctx, player.ID)
	if err != nil {
		return err
	}
	if played > 0 {
		return ErrPlayerHasMatches
	}
	return s.playerRepo.Delete(ctx, playerID)
}
