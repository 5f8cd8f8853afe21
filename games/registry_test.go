package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skirmish-hq/tournament-system/models"
)

type fakeModule struct {
	name string
}

func (f *fakeModule) Name() string { return f.name }
func (f *fakeModule) ValidateMatchResult(result MatchResult) Validation {
	return Validation{Valid: true}
}
func (f *fakeModule) CalculateMatchScore(result MatchResult) Score             { return Score{} }
func (f *fakeModule) FormatStanding(s *models.Standing) map[string]interface{} { return nil }
func (f *fakeModule) Scenarios() []Scenario                                    { return nil }
func (f *fakeModule) ScoringFields() []ScoringField                            { return nil }
func (f *fakeModule) CalculateStandings(players []*models.Player, matches []*models.Match) []*models.Standing {
	return nil
}

func TestRegistryGetIsCaseInsensitive(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeModule{name: "Warmachine"})

	module, err := registry.Get("WARMACHINE")

	require.NoError(t, err)
	assert.Equal(t, "Warmachine", module.Name())
}

func TestRegistryGetUnknownSystem(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("chess")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedGameSystem)
	assert.Contains(t, err.Error(), "chess")
}

func TestRegistryLaterRegistrationReplaces(t *testing.T) {
	registry := NewRegistry()
	first := &fakeModule{name: "warmachine"}
	second := &fakeModule{name: "WarMachine"}
	registry.Register(first)
	registry.Register(second)

	module, err := registry.Get("warmachine")

	require.NoError(t, err)
	assert.Same(t, second, module.(*fakeModule))
}

func TestRegistrySupportedIsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeModule{name: "warmachine"})
	registry.Register(&fakeModule{name: "ageofsigmar"})
	registry.Register(&fakeModule{name: "malifaux"})

	assert.Equal(t, []string{"ageofsigmar", "malifaux", "warmachine"}, registry.Supported())
}
