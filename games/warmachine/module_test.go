package warmachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skirmish-hq/tournament-system/games"
	"github.com/skirmish-hq/tournament-system/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func result(winner *int, p1CP, p2CP int) games.MatchResult {
	return games.MatchResult{
		Player1ID:            1,
		Player2ID:            intPtr(2),
		WinnerID:             winner,
		Player1ControlPoints: p1CP,
		Player2ControlPoints: p2CP,
	}
}

func TestValidateRequiresWinner(t *testing.T) {
	m := New()

	validation := m.ValidateMatchResult(result(nil, 0, 0))

	assert.False(t, validation.Valid)
	assert.Contains(t, validation.Errors[0], "winner is required")
}

func TestValidateByeNeedsNoWinner(t *testing.T) {
	m := New()

	validation := m.ValidateMatchResult(games.MatchResult{Player1ID: 1, IsBye: true})

	assert.True(t, validation.Valid)
}

func TestValidateWinnerMustBeParticipant(t *testing.T) {
	m := New()

	validation := m.ValidateMatchResult(result(intPtr(99), 5, 0))

	assert.False(t, validation.Valid)
	assert.Contains(t, validation.Errors, "winner must be one of the match players")
}

func TestValidateControlPointBounds(t *testing.T) {
	m := New()

	tooHigh := m.ValidateMatchResult(result(intPtr(1), 11, 0))
	assert.False(t, tooHigh.Valid)

	negative := m.ValidateMatchResult(result(intPtr(1), -1, 0))
	assert.False(t, negative.Valid)
}

func TestValidateNegativeArmyPoints(t *testing.T) {
	m := New()
	r := result(intPtr(1), 5, 0)
	r.Player1ArmyPoints = -10

	validation := m.ValidateMatchResult(r)

	assert.False(t, validation.Valid)
	assert.Contains(t, validation.Errors, "army points cannot be negative")
}

func TestValidateWinnerBelowScenarioThresholdRejected(t *testing.T) {
	m := New()

	// 4 CP is not a scenario win, and no alternate condition was declared.
	validation := m.ValidateMatchResult(result(intPtr(1), 4, 6))

	assert.False(t, validation.Valid)
}

func TestValidateWinnerMustOutscoreLoser(t *testing.T) {
	m := New()

	validation := m.ValidateMatchResult(result(intPtr(1), 5, 5))

	assert.False(t, validation.Valid)
}

func TestValidateAssassinationSkipsControlPointCheck(t *testing.T) {
	m := New()
	r := result(intPtr(1), 3, 0)
	r.ResultType = strPtr("assassination")

	validation := m.ValidateMatchResult(r)

	assert.True(t, validation.Valid)
}

func TestValidateScenarioWin(t *testing.T) {
	m := New()
	r := result(intPtr(1), 5, 3)
	r.Scenario = strPtr("Recon II")
	r.ResultType = strPtr("scenario")

	validation := m.ValidateMatchResult(r)

	assert.True(t, validation.Valid)
}

func TestValidateUnknownScenarioAndResultType(t *testing.T) {
	m := New()
	r := result(intPtr(1), 6, 2)
	r.Scenario = strPtr("Capture the Flag")
	r.ResultType = strPtr("golf")

	validation := m.ValidateMatchResult(r)

	assert.False(t, validation.Valid)
	assert.Len(t, validation.Errors, 2)
}

func TestCalculateMatchScoreWinnerGetsOnePoint(t *testing.T) {
	m := New()
	r := result(intPtr(2), 3, 6)
	r.Player1ArmyPoints = 20
	r.Player2ArmyPoints = 35

	score := m.CalculateMatchScore(r)

	assert.Equal(t, 0, score.Player1Score)
	assert.Equal(t, 1, score.Player2Score)
	assert.Equal(t, 3, score.Player1ControlPoints)
	assert.Equal(t, 6, score.Player2ControlPoints)
	assert.Equal(t, 20, score.Player1ArmyPoints)
	assert.Equal(t, 35, score.Player2ArmyPoints)
	require.NotNil(t, score.WinnerID)
	assert.Equal(t, 2, *score.WinnerID)
}

func TestCalculateMatchScoreBye(t *testing.T) {
	m := New()

	score := m.CalculateMatchScore(games.MatchResult{Player1ID: 7, IsBye: true})

	assert.Equal(t, 1, score.Player1Score)
	assert.Equal(t, 0, score.Player2Score)
	require.NotNil(t, score.WinnerID)
	assert.Equal(t, 7, *score.WinnerID)
}

func testPlayers(n int) []*models.Player {
	players := make([]*models.Player, 0, n)
	for i := 1; i <= n; i++ {
		players = append(players, &models.Player{ID: i})
	}
	return players
}

func playedMatch(p1, p2, winner, p1CP, p2CP, p1AP, p2AP int) *models.Match {
	return &models.Match{
		Player1ID:            p1,
		Player2ID:            &p2,
		WinnerID:             &winner,
		Status:               models.MatchStatusCompleted,
		Player1Score:         boolToInt(winner == p1),
		Player2Score:         boolToInt(winner == p2),
		Player1ControlPoints: p1CP,
		Player2ControlPoints: p2CP,
		Player1ArmyPoints:    p1AP,
		Player2ArmyPoints:    p2AP,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestCalculateStandingsRanksByTournamentPoints(t *testing.T) {
	m := New()
	players := testPlayers(4)
	matches := []*models.Match{
		playedMatch(1, 2, 1, 5, 0, 30, 10),
		playedMatch(3, 4, 3, 5, 2, 25, 5),
		playedMatch(1, 3, 1, 5, 1, 40, 12),
		playedMatch(2, 4, 2, 6, 0, 22, 8),
	}

	standings := m.CalculateStandings(players, matches)

	require.Len(t, standings, 4)
	assert.Equal(t, 1, standings[0].PlayerID)
	assert.Equal(t, 2, standings[0].TournamentPoints)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[0].Wins)
	assert.Equal(t, 0, standings[0].Losses)
	assert.Equal(t, 4, standings[3].Rank)
	assert.Equal(t, 4, standings[3].PlayerID)
}

func TestCalculateStandingsStrengthOfScheduleBreaksTies(t *testing.T) {
	m := New()
	players := testPlayers(4)
	// 1 and 3 both finish on 1 TP; 1 beat the eventual 1-TP player 2 while
	// 3 beat the 0-TP player 4, so 1 has the harder schedule.
	matches := []*models.Match{
		playedMatch(1, 2, 1, 5, 0, 10, 10),
		playedMatch(3, 4, 3, 5, 0, 10, 10),
		playedMatch(2, 4, 2, 5, 0, 10, 10),
	}

	standings := m.CalculateStandings(players, matches)

	byID := make(map[int]*models.Standing, len(standings))
	for _, s := range standings {
		byID[s.PlayerID] = s
	}
	assert.Equal(t, byID[1].TournamentPoints, byID[3].TournamentPoints)
	assert.Greater(t, byID[1].StrengthOfSched, byID[3].StrengthOfSched)
	assert.Less(t, byID[1].Rank, byID[3].Rank)
}

func TestCalculateStandingsControlPointsBreakSoSTies(t *testing.T) {
	m := New()
	players := testPlayers(4)
	// Mirror results: 1 and 3 are 1-0 with identical SoS, but 1 banked more
	// control points.
	matches := []*models.Match{
		playedMatch(1, 2, 1, 7, 0, 10, 10),
		playedMatch(3, 4, 3, 5, 0, 10, 10),
	}

	standings := m.CalculateStandings(players, matches)

	assert.Equal(t, 1, standings[0].PlayerID)
	assert.Equal(t, 3, standings[1].PlayerID)
	assert.Equal(t, standings[0].StrengthOfSched, standings[1].StrengthOfSched)
}

func TestCalculateStandingsArmyPointsBreakCPTies(t *testing.T) {
	m := New()
	players := testPlayers(4)
	matches := []*models.Match{
		playedMatch(1, 2, 1, 5, 0, 40, 10),
		playedMatch(3, 4, 3, 5, 0, 25, 10),
	}

	standings := m.CalculateStandings(players, matches)

	assert.Equal(t, 1, standings[0].PlayerID)
	assert.Equal(t, 3, standings[1].PlayerID)
}

func TestCalculateStandingsExactTieKeepsRegistrationOrder(t *testing.T) {
	m := New()
	players := testPlayers(2)

	standings := m.CalculateStandings(players, nil)

	require.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].PlayerID)
	assert.Equal(t, 2, standings[1].PlayerID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestCalculateStandingsByeCountsAsWinWithoutOpponent(t *testing.T) {
	m := New()
	players := testPlayers(3)
	bye := &models.Match{
		Player1ID:    3,
		WinnerID:     intPtr(3),
		Status:       models.MatchStatusBye,
		Player1Score: 1,
	}
	matches := []*models.Match{
		playedMatch(1, 2, 1, 5, 0, 10, 10),
		bye,
	}

	standings := m.CalculateStandings(players, matches)

	var p3 *models.Standing
	for _, s := range standings {
		if s.PlayerID == 3 {
			p3 = s
		}
	}
	require.NotNil(t, p3)
	assert.Equal(t, 1, p3.Wins)
	assert.Equal(t, 1, p3.TournamentPoints)
	assert.Empty(t, p3.Opponents)
	assert.Equal(t, 0, p3.StrengthOfSched)
}

func TestCalculateStandingsIgnoresPendingMatches(t *testing.T) {
	m := New()
	players := testPlayers(2)
	pending := &models.Match{Player1ID: 1, Player2ID: intPtr(2), Status: models.MatchStatusPending}

	standings := m.CalculateStandings(players, []*models.Match{pending})

	for _, s := range standings {
		assert.Zero(t, s.TournamentPoints)
		assert.Zero(t, s.Wins)
	}
}

func TestCalculateStandingsOrderIndependent(t *testing.T) {
	m := New()
	players := testPlayers(4)
	matches := []*models.Match{
		playedMatch(1, 2, 1, 5, 0, 10, 10),
		playedMatch(3, 4, 3, 5, 0, 10, 10),
		playedMatch(1, 3, 1, 5, 2, 10, 10),
		playedMatch(2, 4, 2, 5, 1, 10, 10),
	}
	reversed := []*models.Match{matches[3], matches[2], matches[1], matches[0]}

	forward := m.CalculateStandings(players, matches)
	backward := m.CalculateStandings(players, reversed)

	require.Equal(t, len(forward), len(backward))
	for i := range forward {
		assert.Equal(t, forward[i].PlayerID, backward[i].PlayerID)
		assert.Equal(t, forward[i].StrengthOfSched, backward[i].StrengthOfSched)
		assert.Equal(t, forward[i].OpponentsSoS, backward[i].OpponentsSoS)
	}
}

func TestFormatStanding(t *testing.T) {
	m := New()
	standing := &models.Standing{
		PlayerID:         4,
		DisplayName:      "karchev_fan",
		Rank:             2,
		Wins:             3,
		Losses:           1,
		TournamentPoints: 3,
		StrengthOfSched:  7,
		ControlPoints:    18,
		ArmyPoints:       120,
	}

	row := m.FormatStanding(standing)

	assert.Equal(t, 2, row["rank"])
	assert.Equal(t, "karchev_fan", row["player_name"])
	assert.Equal(t, "3-1", row["record"])
	assert.Equal(t, 7, row["strength_of_schedule"])
}

func TestScoringFieldsDescribeControlPointRange(t *testing.T) {
	m := New()

	fields := m.ScoringFields()

	var cpField *games.ScoringField
	for i := range fields {
		if fields[i].Name == "player1_control_points" {
			cpField = &fields[i]
		}
	}
	require.NotNil(t, cpField)
	require.NotNil(t, cpField.Min)
	require.NotNil(t, cpField.Max)
	assert.Equal(t, 0, *cpField.Min)
	assert.Equal(t, 10, *cpField.Max)
}
