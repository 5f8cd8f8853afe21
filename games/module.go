package games

import (
	"github.com/skirmish-hq/tournament-system/models"
)

// MatchResult is a raw result submission joined with the identity of the
// match being scored. Secondary metric semantics belong to the game
// module (control points and army points for Warmachine).
type MatchResult struct {
	Player1ID            int
	Player2ID            *int
	WinnerID             *int
	Player1ControlPoints int
	Player2ControlPoints int
	Player1ArmyPoints    int
	Player2ArmyPoints    int
	Scenario             *string
	ResultType           *string
	IsBye                bool
}

// Score is the canonical outcome a module derives from a validated
// result: tournament points per side plus the echoed secondary metrics.
type Score struct {
	Player1Score         int
	Player2Score         int
	Player1ControlPoints int
	Player2ControlPoints int
	Player1ArmyPoints    int
	Player2ArmyPoints    int
	WinnerID             *int
}

// Validation carries the outcome of a game-rule check. Errors lists every
// violated rule so submitters can fix them all at once.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Scenario describes a playable mission for presentation purposes.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScoringField describes one input of a result submission so clients can
// render a matching form.
type ScoringField struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Min         *int     `json:"min,omitempty"`
	Max         *int     `json:"max,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description"`
}

// Module implements one game system's rules: result validation, canonical
// scoring, and the tiebreaker cascade that turns match history into
// ranked standings. Modules are pure; all state comes in as arguments.
type Module interface {
	Name() string
	ValidateMatchResult(result MatchResult) Validation
	CalculateMatchScore(result MatchResult) Score
	CalculateStandings(players []*models.Player, matches []*models.Match) []*models.Standing
	FormatStanding(standing *models.Standing) map[string]interface{}
	Scenarios() []Scenario
	ScoringFields() []ScoringField
}
