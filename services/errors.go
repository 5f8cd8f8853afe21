package services

import (
	"errors"
	"strings"
)

// Shared errors used across services and the HTTP error mapping.
var (
	// Validation and business rules
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrRegistrationNotOpen = errors.New("tournament registration is not open")
	ErrTournamentFull      = errors.New("tournament registration is full")

	// Round and match lifecycle
	ErrInsufficientPlayers   = errors.New("at least two active players are required to pair a round")
	ErrInvalidRoundSequence  = errors.New("round operation violates round ordering")
	ErrRoundAlreadyCompleted = errors.New("round is already completed")
	ErrMatchAlreadyResolved  = errors.New("match result has already been recorded")
	ErrMatchNotEditable      = errors.New("match result cannot be edited")
	ErrByeNotScorable        = errors.New("bye matches are scored automatically and cannot be submitted")

	// Player lifecycle
	ErrPlayerAlreadyDropped = errors.New("player has already dropped from the tournament")
	ErrPlayerHasMatches     = errors.New("player has played matches and can only be dropped, not unregistered")

	// Authentication and authorization
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Tournament rules
	ErrTournamentInvalidName             = errors.New("tournament name is required")
	ErrTournamentInvalidRounds           = errors.New("tournament total rounds must be positive")
	ErrTournamentInvalidCapacity         = errors.New("tournament max players must be positive")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotActive               = errors.New("tournament is not in a state that allows this operation")
	ErrAllRoundsPlayed                   = errors.New("all scheduled rounds have already been created")
	ErrLogoStorageDisabled               = errors.New("logo storage is not configured")
)

// ValidationError aggregates game-rule violations from a result submission.
// It unwraps to ErrValidationFailed so callers can branch on the category
// while handlers surface the individual violations.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
