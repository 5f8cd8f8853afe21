// Package warmachine implements the Steamroller 2025 tournament rules for
// Warmachine: result validation, win/loss scoring, and the
// TP > SoS > CP > AP > opponents'-SoS tiebreaker cascade.
package warmachine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skirmish-hq/tournament-system/games"
	"github.com/skirmish-hq/tournament-system/models"
)

// scenarioWinCP is the control-point score that ends a game on scenario.
// A declared winner below it needs an alternate win condition.
const scenarioWinCP = 5

const maxControlPoints = 10

var scenarios = []string{
	"Bunkers",
	"Invasion",
	"Mirage",
	"Recon II",
	"Spread the Net",
	"Take and Hold",
}

// alternateWinConditions end a game regardless of control points.
var alternateWinConditions = map[string]bool{
	"assassination": true,
	"timeout":       true,
	"concession":    true,
}

type Module struct{}

func New() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "warmachine"
}

// ValidateMatchResult checks a submission against Steamroller rules.
// Draws do not exist, so a winner is mandatory for anything but a bye,
// and the winner must have reached a scenario win (5+ CP, more than the
// loser) unless the result carries an alternate win condition.
func (m *Module) ValidateMatchResult(result games.MatchResult) games.Validation {
	var errs []string

	if result.WinnerID == nil && !result.IsBye {
		errs = append(errs, "winner is required (Steamroller does not allow draws)")
	}

	if result.WinnerID != nil {
		winner := *result.WinnerID
		if winner != result.Player1ID && (result.Player2ID == nil || winner != *result.Player2ID) {
			errs = append(errs, "winner must be one of the match players")
		}
	}

	if result.Player1ControlPoints < 0 || result.Player2ControlPoints < 0 {
		errs = append(errs, "control points cannot be negative")
	}
	if result.Player1ControlPoints > maxControlPoints || result.Player2ControlPoints > maxControlPoints {
		errs = append(errs, fmt.Sprintf("control points cannot exceed %d", maxControlPoints))
	}
	if result.Player1ArmyPoints < 0 || result.Player2ArmyPoints < 0 {
		errs = append(errs, "army points cannot be negative")
	}

	if result.WinnerID != nil && !hasAlternateWinCondition(result.ResultType) {
		winnerIsPlayer1 := *result.WinnerID == result.Player1ID
		winnerCP := result.Player1ControlPoints
		loserCP := result.Player2ControlPoints
		if !winnerIsPlayer1 {
			winnerCP, loserCP = loserCP, winnerCP
		}
		if winnerCP < scenarioWinCP || winnerCP <= loserCP {
			errs = append(errs, fmt.Sprintf("winner must have at least %d control points and more than the loser (unless assassination/timeout/concession)", scenarioWinCP))
		}
	}

	if result.ResultType != nil && *result.ResultType != "" && *result.ResultType != "scenario" && !alternateWinConditions[*result.ResultType] {
		errs = append(errs, fmt.Sprintf("invalid result type %q", *result.ResultType))
	}

	if result.Scenario != nil && *result.Scenario != "" && !validScenario(*result.Scenario) {
		errs = append(errs, fmt.Sprintf("invalid scenario, must be one of: %s", strings.Join(scenarios, ", ")))
	}

	return games.Validation{Valid: len(errs) == 0, Errors: errs}
}

// CalculateMatchScore maps a validated result to canonical scores: 1
// tournament point for the win, 0 for the loss, secondary metrics echoed
// through. A bye always scores 1-0 for the sole participant.
func (m *Module) CalculateMatchScore(result games.MatchResult) games.Score {
	score := games.Score{
		Player1ControlPoints: result.Player1ControlPoints,
		Player2ControlPoints: result.Player2ControlPoints,
		Player1ArmyPoints:    result.Player1ArmyPoints,
		Player2ArmyPoints:    result.Player2ArmyPoints,
		WinnerID:             result.WinnerID,
	}

	if result.IsBye {
		p1 := result.Player1ID
		score.Player1Score = 1
		score.WinnerID = &p1
		return score
	}

	if result.WinnerID != nil {
		switch {
		case *result.WinnerID == result.Player1ID:
			score.Player1Score = 1
		case result.Player2ID != nil && *result.WinnerID == *result.Player2ID:
			score.Player2Score = 1
		}
	}
	return score
}

// CalculateStandings aggregates completed matches into ranked standings.
//
// Three ordered passes keep the schedule-strength numbers well defined:
// totals and opponent lists first, then SoS from finalized tournament
// points, then opponents'-SoS from finalized SoS. Computing either
// strength value before its input pass finishes would make the result
// depend on match iteration order.
func (m *Module) CalculateStandings(players []*models.Player, matches []*models.Match) []*models.Standing {
	standings := make([]*models.Standing, 0, len(players))
	byPlayer := make(map[int]*models.Standing, len(players))
	for _, p := range players {
		s := &models.Standing{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Faction:     p.Faction,
			ListName:    p.ListName,
		}
		standings = append(standings, s)
		byPlayer[p.ID] = s
	}

	for _, match := range matches {
		if !match.Resolved() {
			continue
		}

		p1 := byPlayer[match.Player1ID]
		if p1 == nil {
			continue
		}
		p1.TournamentPoints += match.Player1Score
		p1.ControlPoints += match.Player1ControlPoints
		p1.ArmyPoints += match.Player1ArmyPoints

		if match.Player2ID == nil {
			// Bye: the win counts, the opponent does not exist.
			if match.WinnerID != nil && *match.WinnerID == match.Player1ID {
				p1.Wins++
			}
			continue
		}

		p2 := byPlayer[*match.Player2ID]
		if p2 == nil {
			continue
		}
		p2.TournamentPoints += match.Player2Score
		p2.ControlPoints += match.Player2ControlPoints
		p2.ArmyPoints += match.Player2ArmyPoints

		if match.WinnerID != nil {
			switch *match.WinnerID {
			case match.Player1ID:
				p1.Wins++
				p2.Losses++
			case *match.Player2ID:
				p2.Wins++
				p1.Losses++
			}
		}

		p1.Opponents = append(p1.Opponents, p2.PlayerID)
		p2.Opponents = append(p2.Opponents, p1.PlayerID)
	}

	for _, s := range standings {
		for _, oppID := range s.Opponents {
			if opp := byPlayer[oppID]; opp != nil {
				s.StrengthOfSched += opp.TournamentPoints
			}
		}
	}

	for _, s := range standings {
		for _, oppID := range s.Opponents {
			if opp := byPlayer[oppID]; opp != nil {
				s.OpponentsSoS += opp.StrengthOfSched
			}
		}
	}

	// Stable sort keeps registration order for exact ties across all five
	// criteria.
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TournamentPoints != b.TournamentPoints {
			return a.TournamentPoints > b.TournamentPoints
		}
		if a.StrengthOfSched != b.StrengthOfSched {
			return a.StrengthOfSched > b.StrengthOfSched
		}
		if a.ControlPoints != b.ControlPoints {
			return a.ControlPoints > b.ControlPoints
		}
		if a.ArmyPoints != b.ArmyPoints {
			return a.ArmyPoints > b.ArmyPoints
		}
		return a.OpponentsSoS > b.OpponentsSoS
	})

	for i, s := range standings {
		s.Rank = i + 1
	}
	return standings
}

func (m *Module) FormatStanding(standing *models.Standing) map[string]interface{} {
	return map[string]interface{}{
		"rank":                 standing.Rank,
		"player_id":            standing.PlayerID,
		"player_name":          standing.DisplayName,
		"faction":              standing.Faction,
		"list_name":            standing.ListName,
		"record":               fmt.Sprintf("%d-%d", standing.Wins, standing.Losses),
		"tournament_points":    standing.TournamentPoints,
		"strength_of_schedule": standing.StrengthOfSched,
		"control_points":       standing.ControlPoints,
		"army_points":          standing.ArmyPoints,
		"opponents_sos":        standing.OpponentsSoS,
	}
}

func (m *Module) Scenarios() []games.Scenario {
	list := make([]games.Scenario, 0, len(scenarios))
	for _, name := range scenarios {
		list = append(list, games.Scenario{
			Name:        name,
			Description: "Steamroller 2025 - " + name,
		})
	}
	return list
}

func (m *Module) ScoringFields() []games.ScoringField {
	zero := 0
	maxCP := maxControlPoints
	return []games.ScoringField{
		{Name: "winner_id", Type: "integer", Required: true, Description: "Player who won the match"},
		{Name: "player1_control_points", Type: "integer", Required: true, Min: &zero, Max: &maxCP, Description: "Control points scored by player 1"},
		{Name: "player2_control_points", Type: "integer", Required: true, Min: &zero, Max: &maxCP, Description: "Control points scored by player 2"},
		{Name: "player1_army_points", Type: "integer", Required: true, Min: &zero, Description: "Enemy army points destroyed by player 1"},
		{Name: "player2_army_points", Type: "integer", Required: true, Min: &zero, Description: "Enemy army points destroyed by player 2"},
		{Name: "scenario", Type: "string", Required: false, Enum: scenarios, Description: "Scenario played"},
		{Name: "result_type", Type: "string", Required: false, Enum: []string{"scenario", "assassination", "timeout", "concession"}, Description: "How the match was won"},
	}
}

func hasAlternateWinCondition(resultType *string) bool {
	return resultType != nil && alternateWinConditions[*resultType]
}

func validScenario(name string) bool {
	for _, s := range scenarios {
		if s == name {
			return true
		}
	}
	return false
}
