package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/skirmish-hq/tournament-system/games"
	"github.com/skirmish-hq/tournament-system/models"
	"github.com/skirmish-hq/tournament-system/repositories"
	"github.com/skirmish-hq/tournament-system/storage"
)

type CreateTournamentInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	GameSystem  string    `json:"game_system"`
	TotalRounds int       `json:"total_rounds"`
	MaxPlayers  int       `json:"max_players"`
	Location    *string   `json:"location,omitempty"`
	StartDate   time.Time `json:"start_date"`
}

type UpdateTournamentInput struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	TotalRounds *int       `json:"total_rounds,omitempty"`
	MaxPlayers  *int       `json:"max_players,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.TournamentFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	db             *sql.DB
	registry       *games.Registry
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
}

func NewTournamentService(
	db *sql.DB,
	registry *games.Registry,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
) TournamentService {
	return &tournamentService{
		db:             db,
		registry:       registry,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
	}
}

func (s *tournamentService) validateCreateInput(input CreateTournamentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrTournamentInvalidName
	}
	if input.TotalRounds <= 0 {
		return ErrTournamentInvalidRounds
	}
	if input.MaxPlayers <= 0 {
		return ErrTournamentInvalidCapacity
	}
	if _, err := s.registry.Get(input.GameSystem); err != nil {
		return err
	}
	return nil
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if err := s.validateCreateInput(input); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		GameSystem:  strings.ToLower(input.GameSystem),
		OrganizerID: organizerID,
		Status:      models.StatusDraft,
		TotalRounds: input.TotalRounds,
		MaxPlayers:  input.MaxPlayers,
		Location:    input.Location,
		StartDate:   input.StartDate,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.TournamentFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.populateLogoURL(t)
	}
	return tournaments, nil
}

// Update edits tournament settings. TotalRounds may never drop below the
// rounds already played.
func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrTournamentInvalidName
		}
		tournament.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.TotalRounds != nil {
		if *input.TotalRounds <= 0 {
			return nil, ErrTournamentInvalidRounds
		}
		if *input.TotalRounds < tournament.CurrentRound {
			return nil, fmt.Errorf("%w: %d rounds already played", ErrTournamentInvalidRounds, tournament.CurrentRound)
		}
		tournament.TotalRounds = *input.TotalRounds
	}
	if input.MaxPlayers != nil {
		if *input.MaxPlayers <= 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		tournament.MaxPlayers = *input.MaxPlayers
	}
	if input.Location != nil {
		tournament.Location = input.Location
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}

	if err = s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, err
	}
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	switch status {
	case models.StatusDraft, models.StatusRegistration, models.StatusActive,
		models.StatusPaused, models.StatusCompleted, models.StatusCancelled:
	default:
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, status)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}

	if err = s.tournamentRepo.UpdateStatus(ctx, s.db, id, status); err != nil {
		return nil, err
	}
	tournament.Status = status
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/logo-%d", id, time.Now().UnixNano())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for tournament %d: %w", id, err)
	}

	oldKey := tournament.LogoKey
	if err = s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			log.Printf("failed to delete previous logo %s for tournament %d: %v", *oldKey, id, delErr)
		}
	}

	tournament.LogoKey = &result.Key
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if s.uploader == nil || t.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	t.LogoURL = &url
}
