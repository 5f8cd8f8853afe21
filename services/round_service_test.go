package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skirmish-hq/tournament-system/models"
)

func tournament(status models.TournamentStatus, currentRound, totalRounds int) *models.Tournament {
	return &models.Tournament{
		Status:       status,
		CurrentRound: currentRound,
		TotalRounds:  totalRounds,
	}
}

func TestValidateRoundCreationFirstRoundFromRegistration(t *testing.T) {
	assert.NoError(t, validateRoundCreation(tournament(models.StatusRegistration, 0, 5), 1))
}

func TestValidateRoundCreationFirstRoundFromActive(t *testing.T) {
	assert.NoError(t, validateRoundCreation(tournament(models.StatusActive, 0, 5), 1))
}

func TestValidateRoundCreationFirstRoundFromDraft(t *testing.T) {
	err := validateRoundCreation(tournament(models.StatusDraft, 0, 5), 1)
	assert.ErrorIs(t, err, ErrTournamentNotActive)
}

func TestValidateRoundCreationLaterRoundRequiresActive(t *testing.T) {
	assert.NoError(t, validateRoundCreation(tournament(models.StatusActive, 1, 5), 2))

	err := validateRoundCreation(tournament(models.StatusPaused, 1, 5), 2)
	assert.ErrorIs(t, err, ErrTournamentNotActive)
}

func TestValidateRoundCreationRespectsTotalRounds(t *testing.T) {
	err := validateRoundCreation(tournament(models.StatusActive, 5, 5), 6)
	assert.ErrorIs(t, err, ErrAllRoundsPlayed)
}
