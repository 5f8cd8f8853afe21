package swiss

import (
	"math/rand"
	"sort"
	"time"

	"github.com/skirmish-hq/tournament-system/models"
)

// Pairing is one generated table assignment for a round. Player2ID is nil
// for the round's bye slot.
type Pairing struct {
	TableNumber int  `json:"table_number"`
	Player1ID   int  `json:"player1_id"`
	Player2ID   *int `json:"player2_id,omitempty"`
	IsBye       bool `json:"is_bye"`
}

// Engine generates Swiss pairings. The random source only influences
// round 1; later rounds are fully determined by records and history.
type Engine struct {
	rng *rand.Rand
}

// NewEngine returns an engine backed by the given random source. A nil
// source falls back to a time-seeded one; tests inject a fixed seed to get
// reproducible round-1 pairings.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// GeneratePairings produces the pairing set for the given round: a random
// perfect matching for round 1, record-based score-group pairings for
// later rounds. Dropped players are ignored. Every remaining player is
// covered by exactly one pairing; an odd count yields exactly one bye.
//
// Callers must enforce the two-player minimum before generating; the
// engine itself never fails.
func (e *Engine) GeneratePairings(players []*models.Player, history []*models.Match, roundNumber int) []Pairing {
	active := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if !p.Dropped {
			active = append(active, p)
		}
	}

	if roundNumber <= 1 {
		return e.randomPairings(active)
	}
	return recordPairings(active, history)
}

// randomPairings shuffles the field and pairs consecutive players. Round 1
// carries no score information, so randomization is as fair as anything.
func (e *Engine) randomPairings(players []*models.Player) []Pairing {
	shuffled := make([]*models.Player, len(players))
	copy(shuffled, players)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pairings := make([]Pairing, 0, (len(shuffled)+1)/2)
	table := 1
	for i := 0; i < len(shuffled); i += 2 {
		if i+1 < len(shuffled) {
			p2 := shuffled[i+1].ID
			pairings = append(pairings, Pairing{
				TableNumber: table,
				Player1ID:   shuffled[i].ID,
				Player2ID:   &p2,
			})
		} else {
			pairings = append(pairings, Pairing{
				TableNumber: table,
				Player1ID:   shuffled[i].ID,
				IsBye:       true,
			})
		}
		table++
	}
	return pairings
}

// recordPairings pairs by current record: players are bucketed into score
// groups by win count and paired inside each group, highest group first,
// never against a previous opponent when avoidable.
//
// A player without a legal opponent in their group is carried down into
// the next-lower group rather than silently byed. If the field is odd the
// bye recipient is chosen up front and removed from the pool, so the
// remaining pool always admits a full matching.
func recordPairings(players []*models.Player, history []*models.Match) []Pairing {
	opponents := OpponentHistory(history)

	pool := players
	var byePlayer *models.Player
	if len(pool)%2 == 1 {
		byePlayer = pickByeRecipient(pool, history)
		trimmed := make([]*models.Player, 0, len(pool)-1)
		for _, p := range pool {
			if p.ID != byePlayer.ID {
				trimmed = append(trimmed, p)
			}
		}
		pool = trimmed
	}

	var pairs [][2]int
	var carried []*models.Player
	for _, group := range scoreGroups(pool) {
		// Carried-down players pair first so they stay as close to their
		// own score bracket as possible.
		group = append(carried, group...)
		carried = nil

		groupPairs, leftover := pairWithinGroup(group, opponents)
		pairs = append(pairs, groupPairs...)
		carried = leftover
	}

	// Players still unpaired after the lowest group have all already met
	// someone in the leftover pool; pair them with as few rematches as
	// possible.
	if len(carried) > 0 {
		pairs = append(pairs, pairLeftovers(carried, opponents)...)
	}

	pairings := make([]Pairing, 0, len(pairs)+1)
	for i, pair := range pairs {
		p2 := pair[1]
		pairings = append(pairings, Pairing{
			TableNumber: i + 1,
			Player1ID:   pair[0],
			Player2ID:   &p2,
		})
	}
	if byePlayer != nil {
		pairings = append(pairings, Pairing{
			TableNumber: len(pairs) + 1,
			Player1ID:   byePlayer.ID,
			IsBye:       true,
		})
	}
	return pairings
}

// scoreGroups buckets players by win count, ordered highest group first.
// Order inside a group follows the input order, which callers keep
// deterministic (registration order).
func scoreGroups(players []*models.Player) [][]*models.Player {
	byScore := make(map[int][]*models.Player)
	for _, p := range players {
		byScore[p.Wins] = append(byScore[p.Wins], p)
	}

	scores := make([]int, 0, len(byScore))
	for score := range byScore {
		scores = append(scores, score)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))

	groups := make([][]*models.Player, 0, len(scores))
	for _, score := range scores {
		groups = append(groups, byScore[score])
	}
	return groups
}

// pairWithinGroup greedily pairs group members: the first unpaired player
// takes the first remaining member they have not already faced. Players
// with no legal opponent left in the group are returned as leftovers for
// the caller to carry down.
func pairWithinGroup(group []*models.Player, opponents map[int]map[int]bool) (pairs [][2]int, leftover []*models.Player) {
	available := make([]*models.Player, len(group))
	copy(available, group)

	for len(available) >= 2 {
		p1 := available[0]
		available = available[1:]

		match := -1
		for i, candidate := range available {
			if !opponents[p1.ID][candidate.ID] {
				match = i
				break
			}
		}
		if match < 0 {
			leftover = append(leftover, p1)
			continue
		}

		p2 := available[match]
		available = append(available[:match], available[match+1:]...)
		pairs = append(pairs, [2]int{p1.ID, p2.ID})
	}

	leftover = append(leftover, available...)
	return pairs, leftover
}

// pairLeftovers matches the post-cascade remainder. It first searches for
// a complete rematch-free matching by backtracking; only when none exists
// does it fall back to pairing players in order, accepting rematches.
// The leftover pool is always even here.
func pairLeftovers(players []*models.Player, opponents map[int]map[int]bool) [][2]int {
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}

	if matched, ok := matchAvoidingRematches(ids, opponents); ok {
		return matched
	}

	// Forced rematches: unavoidable with this pool.
	pairs := make([][2]int, 0, len(ids)/2)
	for i := 0; i+1 < len(ids); i += 2 {
		pairs = append(pairs, [2]int{ids[i], ids[i+1]})
	}
	return pairs
}

// matchAvoidingRematches finds a perfect rematch-free matching of ids via
// backtracking, or reports that none exists. Pools here are tiny (group
// leftovers), so the exponential worst case is irrelevant.
func matchAvoidingRematches(ids []int, opponents map[int]map[int]bool) ([][2]int, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	first := ids[0]
	for i := 1; i < len(ids); i++ {
		if opponents[first][ids[i]] {
			continue
		}
		rest := make([]int, 0, len(ids)-2)
		rest = append(rest, ids[1:i]...)
		rest = append(rest, ids[i+1:]...)
		if tail, ok := matchAvoidingRematches(rest, opponents); ok {
			return append([][2]int{{first, ids[i]}}, tail...), true
		}
	}
	return nil, false
}

// pickByeRecipient selects the round's bye for an odd field: a player who
// has not yet had a bye this tournament, lowest win count first, latest
// registration breaking ties. Falls back to the same ordering over the
// whole field if everyone has already been byed.
func pickByeRecipient(players []*models.Player, history []*models.Match) *models.Player {
	candidates := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if !HasHadBye(p.ID, history) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = players
	}

	best := candidates[0]
	for _, p := range candidates[1:] {
		if p.Wins < best.Wins || (p.Wins == best.Wins && p.ID > best.ID) {
			best = p
		}
	}
	return best
}

// OpponentHistory builds the symmetric played-against map from completed
// matches. Byes never contribute entries.
func OpponentHistory(matches []*models.Match) map[int]map[int]bool {
	history := make(map[int]map[int]bool)
	add := func(a, b int) {
		if history[a] == nil {
			history[a] = make(map[int]bool)
		}
		history[a][b] = true
	}

	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted || m.Player2ID == nil {
			continue
		}
		add(m.Player1ID, *m.Player2ID)
		add(*m.Player2ID, m.Player1ID)
	}
	return history
}

// HasHadBye reports whether the player has already received a bye in any
// prior round of the tournament.
func HasHadBye(playerID int, matches []*models.Match) bool {
	for _, m := range matches {
		if m.Status == models.MatchStatusBye && m.Player1ID == playerID {
			return true
		}
	}
	return false
}
