package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    TournamentStatus
		to      TournamentStatus
		allowed bool
	}{
		{StatusDraft, StatusRegistration, true},
		{StatusDraft, StatusActive, false},
		{StatusRegistration, StatusActive, true},
		{StatusRegistration, StatusCompleted, false},
		{StatusActive, StatusPaused, true},
		{StatusActive, StatusCompleted, true},
		{StatusPaused, StatusActive, true},
		{StatusPaused, StatusRegistration, true},
		{StatusCompleted, StatusActive, false},
		{StatusCancelled, StatusDraft, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestMatchResolved(t *testing.T) {
	two := 2

	pending := Match{Player1ID: 1, Player2ID: &two, Status: MatchStatusPending}
	completed := Match{Player1ID: 1, Player2ID: &two, Status: MatchStatusCompleted}
	bye := Match{Player1ID: 1, Status: MatchStatusBye}

	assert.False(t, pending.Resolved())
	assert.True(t, completed.Resolved())
	assert.True(t, bye.Resolved())

	assert.False(t, pending.IsBye())
	assert.True(t, bye.IsBye())
}
