package models

import "time"

// Player is a person's registration in one tournament. A user has at most
// one registration per tournament (enforced by a unique constraint).
//
// Once a player has appeared in a match the registration is never deleted;
// mid-tournament removal sets Dropped and fixes DropRound instead.
type Player struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	DisplayName  string    `json:"display_name" db:"-"`
	Faction      *string   `json:"faction,omitempty" db:"faction"`
	ListName     *string   `json:"list_name,omitempty" db:"list_name"`
	Dropped      bool      `json:"dropped" db:"dropped"`
	DropRound    *int      `json:"drop_round,omitempty" db:"drop_round"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Running totals over completed matches, aggregated by the repository.
	Wins   int `json:"wins" db:"-"`
	Losses int `json:"losses" db:"-"`
}
