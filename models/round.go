package models

import "time"

// RoundStatus mirrors the round_status ENUM in the database.
type RoundStatus string

const (
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
)

// Round is one numbered stage of a tournament. Round numbers are 1-based
// and gapless; round N+1 cannot be created until round N is completed.
type Round struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int         `json:"round_number" db:"round_number"`
	Status       RoundStatus `json:"status" db:"status"`
	StartedAt    time.Time   `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty" db:"completed_at"`

	Matches []Match `json:"matches,omitempty" db:"-"`
}
