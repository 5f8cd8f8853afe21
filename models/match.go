package models

import "time"

// MatchStatus mirrors the match_status ENUM in the database. A bye is a
// terminal status: the match is created resolved with player 2 absent.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusBye       MatchStatus = "bye"
)

// Match is one pairing within a round: two registrations, or one
// registration plus a bye (Player2ID nil). Scores hold tournament points;
// control and army points are game-specific secondary metrics.
type Match struct {
	ID           int         `json:"id" db:"id"`
	RoundID      int         `json:"round_id" db:"round_id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	TableNumber  int         `json:"table_number" db:"table_number"`
	Player1ID    int         `json:"player1_id" db:"player1_id"`
	Player2ID    *int        `json:"player2_id,omitempty" db:"player2_id"`
	Status       MatchStatus `json:"status" db:"status"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`

	Player1Score         int     `json:"player1_score" db:"player1_score"`
	Player2Score         int     `json:"player2_score" db:"player2_score"`
	Player1ControlPoints int     `json:"player1_control_points" db:"player1_control_points"`
	Player2ControlPoints int     `json:"player2_control_points" db:"player2_control_points"`
	Player1ArmyPoints    int     `json:"player1_army_points" db:"player1_army_points"`
	Player2ArmyPoints    int     `json:"player2_army_points" db:"player2_army_points"`
	Scenario             *string `json:"scenario,omitempty" db:"scenario"`
	ResultType           *string `json:"result_type,omitempty" db:"result_type"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// IsBye reports whether the match is a bye slot.
func (m *Match) IsBye() bool {
	return m.Player2ID == nil
}

// Resolved reports whether the match no longer blocks round completion.
func (m *Match) Resolved() bool {
	return m.Status == MatchStatusCompleted || m.Status == MatchStatusBye
}
