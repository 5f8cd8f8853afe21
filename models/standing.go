package models

// Standing is a per-player aggregate derived from completed matches.
// Standings are recomputed from match history on every request and are
// never persisted.
type Standing struct {
	PlayerID    int     `json:"player_id"`
	DisplayName string  `json:"display_name"`
	Faction     *string `json:"faction,omitempty"`
	ListName    *string `json:"list_name,omitempty"`

	Rank             int `json:"rank"`
	TournamentPoints int `json:"tournament_points"`
	StrengthOfSched  int `json:"strength_of_schedule"`
	ControlPoints    int `json:"control_points"`
	ArmyPoints       int `json:"army_points"`
	OpponentsSoS     int `json:"opponents_sos"`
	Wins             int `json:"wins"`
	Losses           int `json:"losses"`

	// Opponent registration IDs, byes excluded. Used while computing the
	// schedule-strength passes; not part of the API payload.
	Opponents []int `json:"-"`
}
