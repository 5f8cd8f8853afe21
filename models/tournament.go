package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusDraft        TournamentStatus = "draft"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusPaused       TournamentStatus = "paused"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
)

// allowedStatusTransitions defines the organizer-driven tournament state
// machine. Opening round 1 additionally flips registration -> active on its
// own.
var allowedStatusTransitions = map[TournamentStatus][]TournamentStatus{
	StatusDraft:        {StatusRegistration, StatusCancelled},
	StatusRegistration: {StatusActive, StatusPaused, StatusCancelled},
	StatusActive:       {StatusPaused, StatusCompleted, StatusCancelled},
	StatusPaused:       {StatusRegistration, StatusActive, StatusCancelled},
	StatusCompleted:    {},
	StatusCancelled:    {},
}

// CanTransitionTo reports whether an organizer may move a tournament from
// its current status to the target one.
func (s TournamentStatus) CanTransitionTo(target TournamentStatus) bool {
	for _, allowed := range allowedStatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Tournament is one event: a fixed number of Swiss rounds for a single
// game system.
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Description  *string          `json:"description,omitempty" db:"description"`
	GameSystem   string           `json:"game_system" db:"game_system"`
	OrganizerID  int              `json:"organizer_id" db:"organizer_id"`
	Status       TournamentStatus `json:"status" db:"status"`
	TotalRounds  int              `json:"total_rounds" db:"total_rounds"`
	CurrentRound int              `json:"current_round" db:"current_round"`
	MaxPlayers   int              `json:"max_players" db:"max_players"`
	Location     *string          `json:"location,omitempty" db:"location"`
	StartDate    time.Time        `json:"start_date" db:"start_date"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	LogoKey      *string          `json:"-" db:"logo_key"`
	LogoURL      *string          `json:"logo_url,omitempty" db:"-"`

	// Optional linked entities, populated by services, not mapped directly.
	Organizer *User    `json:"organizer,omitempty" db:"-"`
	Players   []Player `json:"players,omitempty" db:"-"`
	Rounds    []Round  `json:"rounds,omitempty" db:"-"`
}
