package swiss

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skirmish-hq/tournament-system/models"
)

func player(id, wins int) *models.Player {
	return &models.Player{ID: id, Wins: wins}
}

func completedMatch(p1, p2, winner int) *models.Match {
	return &models.Match{
		Player1ID: p1,
		Player2ID: &p2,
		WinnerID:  &winner,
		Status:    models.MatchStatusCompleted,
	}
}

func byeMatch(p1 int) *models.Match {
	return &models.Match{
		Player1ID: p1,
		WinnerID:  &p1,
		Status:    models.MatchStatusBye,
	}
}

func pairedIDs(pairings []Pairing) map[int]bool {
	ids := make(map[int]bool)
	for _, p := range pairings {
		ids[p.Player1ID] = true
		if p.Player2ID != nil {
			ids[*p.Player2ID] = true
		}
	}
	return ids
}

func TestGeneratePairingsRoundOneCoversEveryone(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(1)))
	players := []*models.Player{player(1, 0), player(2, 0), player(3, 0), player(4, 0)}

	pairings := engine.GeneratePairings(players, nil, 1)

	require.Len(t, pairings, 2)
	assert.Len(t, pairedIDs(pairings), 4)
	for _, p := range pairings {
		assert.False(t, p.IsBye)
	}
	assert.Empty(t, ValidatePairings(pairings, players, nil))
}

func TestGeneratePairingsRoundOneOddFieldGetsOneBye(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(7)))
	players := []*models.Player{player(1, 0), player(2, 0), player(3, 0), player(4, 0), player(5, 0)}

	pairings := engine.GeneratePairings(players, nil, 1)

	require.Len(t, pairings, 3)
	byes := 0
	for _, p := range pairings {
		if p.IsBye {
			byes++
			assert.Nil(t, p.Player2ID)
		}
	}
	assert.Equal(t, 1, byes)
	assert.Len(t, pairedIDs(pairings), 5)
}

func TestGeneratePairingsRoundOneDeterministicWithSeed(t *testing.T) {
	players := []*models.Player{player(1, 0), player(2, 0), player(3, 0), player(4, 0), player(5, 0), player(6, 0)}

	first := NewEngine(rand.New(rand.NewSource(42))).GeneratePairings(players, nil, 1)
	second := NewEngine(rand.New(rand.NewSource(42))).GeneratePairings(players, nil, 1)

	assert.Equal(t, first, second)
}

func TestGeneratePairingsSkipsDroppedPlayers(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(3)))
	players := []*models.Player{player(1, 0), player(2, 0), player(3, 0)}
	players[2].Dropped = true

	pairings := engine.GeneratePairings(players, nil, 1)

	require.Len(t, pairings, 1)
	ids := pairedIDs(pairings)
	assert.False(t, ids[3])
	assert.True(t, ids[1])
	assert.True(t, ids[2])
}

func TestGeneratePairingsLaterRoundsGroupByScore(t *testing.T) {
	engine := NewEngine(nil)
	// Round 1: 1 beat 2, 3 beat 4.
	history := []*models.Match{
		completedMatch(1, 2, 1),
		completedMatch(3, 4, 3),
	}
	players := []*models.Player{player(1, 1), player(2, 0), player(3, 1), player(4, 0)}

	pairings := engine.GeneratePairings(players, history, 2)

	require.Len(t, pairings, 2)
	assert.Empty(t, ValidatePairings(pairings, players, history))

	// Winners meet at table 1, losers at table 2.
	winners := pairings[0]
	require.NotNil(t, winners.Player2ID)
	assert.ElementsMatch(t, []int{1, 3}, []int{winners.Player1ID, *winners.Player2ID})

	losers := pairings[1]
	require.NotNil(t, losers.Player2ID)
	assert.ElementsMatch(t, []int{2, 4}, []int{losers.Player1ID, *losers.Player2ID})
}

func TestGeneratePairingsAvoidsRematchesAcrossGroups(t *testing.T) {
	engine := NewEngine(nil)
	// 1 and 2 have played; both sit at 1 win, so a naive same-group pairing
	// would rematch them.
	history := []*models.Match{
		completedMatch(1, 2, 1),
		completedMatch(3, 4, 4),
		completedMatch(1, 3, 1),
		completedMatch(2, 4, 2),
	}
	players := []*models.Player{player(1, 2), player(2, 1), player(3, 0), player(4, 1)}

	pairings := engine.GeneratePairings(players, history, 3)

	assert.Empty(t, ValidatePairings(pairings, players, history))
}

func TestGeneratePairingsForcesRematchOnlyWhenUnavoidable(t *testing.T) {
	engine := NewEngine(nil)
	// Two players who have already met and nobody else: a rematch is the
	// only legal output.
	history := []*models.Match{completedMatch(1, 2, 1)}
	players := []*models.Player{player(1, 1), player(2, 0)}

	pairings := engine.GeneratePairings(players, history, 2)

	require.Len(t, pairings, 1)
	require.NotNil(t, pairings[0].Player2ID)
	assert.ElementsMatch(t, []int{1, 2}, []int{pairings[0].Player1ID, *pairings[0].Player2ID})
}

func TestGeneratePairingsByeGoesToLowestWinsWithoutPriorBye(t *testing.T) {
	engine := NewEngine(nil)
	// Player 3 already had a bye in round 1; players 4 and 5 are winless.
	history := []*models.Match{
		completedMatch(1, 2, 1),
		completedMatch(4, 5, 4),
		byeMatch(3),
	}
	players := []*models.Player{player(1, 1), player(2, 0), player(3, 1), player(4, 1), player(5, 0)}

	pairings := engine.GeneratePairings(players, history, 2)

	var bye *Pairing
	for i := range pairings {
		if pairings[i].IsBye {
			bye = &pairings[i]
		}
	}
	require.NotNil(t, bye)
	// Lowest wins, highest ID among ties, excluding player 3.
	assert.Equal(t, 5, bye.Player1ID)
	assert.Empty(t, ValidatePairings(pairings, players, history))
}

func TestGeneratePairingsByeFallsBackWhenEveryoneWasByed(t *testing.T) {
	engine := NewEngine(nil)
	history := []*models.Match{
		byeMatch(1),
		byeMatch(2),
		byeMatch(3),
		completedMatch(1, 2, 1),
	}
	players := []*models.Player{player(1, 2), player(2, 1), player(3, 1)}

	pairings := engine.GeneratePairings(players, history, 3)

	var bye *Pairing
	for i := range pairings {
		if pairings[i].IsBye {
			bye = &pairings[i]
		}
	}
	require.NotNil(t, bye)
	// All have prior byes, so lowest wins wins the tie: players 2 and 3 at
	// one win, higher ID preferred.
	assert.Equal(t, 3, bye.Player1ID)
}

func TestGeneratePairingsByeIsAlwaysLastTable(t *testing.T) {
	engine := NewEngine(nil)
	history := []*models.Match{
		completedMatch(1, 2, 1),
		completedMatch(3, 4, 3),
		byeMatch(5),
	}
	players := []*models.Player{player(1, 1), player(2, 0), player(3, 1), player(4, 0), player(5, 1)}

	pairings := engine.GeneratePairings(players, history, 2)

	require.Len(t, pairings, 3)
	for i, p := range pairings {
		assert.Equal(t, i+1, p.TableNumber)
	}
	assert.True(t, pairings[len(pairings)-1].IsBye)
}

func TestOpponentHistoryIgnoresByesAndPending(t *testing.T) {
	two := 2
	matches := []*models.Match{
		completedMatch(1, 2, 1),
		byeMatch(3),
		{Player1ID: 4, Player2ID: &two, Status: models.MatchStatusPending},
	}

	history := OpponentHistory(matches)

	assert.True(t, history[1][2])
	assert.True(t, history[2][1])
	assert.Empty(t, history[3])
	assert.Empty(t, history[4])
}

func TestHasHadBye(t *testing.T) {
	matches := []*models.Match{
		completedMatch(1, 2, 1),
		byeMatch(3),
	}

	assert.True(t, HasHadBye(3, matches))
	assert.False(t, HasHadBye(1, matches))
	assert.False(t, HasHadBye(2, matches))
}
