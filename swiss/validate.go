package swiss

import (
	"fmt"

	"github.com/skirmish-hq/tournament-system/models"
)

// ValidatePairings audits a generated pairing set against the active
// player list and match history. It returns one message per violation:
// a player paired twice, an active player left out, or a repeated
// opponent. An empty slice means the set is clean.
//
// This is a post-hoc check for tests and defensive assertions; it never
// alters the engine's output.
func ValidatePairings(pairings []Pairing, players []*models.Player, history []*models.Match) []string {
	var violations []string

	opponents := OpponentHistory(history)
	seen := make(map[int]bool)

	for _, pairing := range pairings {
		if seen[pairing.Player1ID] {
			violations = append(violations, fmt.Sprintf("player %d is paired multiple times", pairing.Player1ID))
		}
		seen[pairing.Player1ID] = true

		if pairing.Player2ID == nil {
			continue
		}
		p2 := *pairing.Player2ID
		if seen[p2] {
			violations = append(violations, fmt.Sprintf("player %d is paired multiple times", p2))
		}
		seen[p2] = true

		if opponents[pairing.Player1ID][p2] {
			violations = append(violations, fmt.Sprintf("players %d and %d have already played each other", pairing.Player1ID, p2))
		}
	}

	for _, p := range players {
		if p.Dropped {
			continue
		}
		if !seen[p.ID] {
			violations = append(violations, fmt.Sprintf("active player %d is not paired", p.ID))
		}
	}

	return violations
}
