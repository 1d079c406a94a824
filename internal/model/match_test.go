package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchStatusTransitions(t *testing.T) {
	cases := []struct {
		from    MatchStatus
		to      MatchStatus
		allowed bool
	}{
		{MatchStatusPending, MatchStatusContacted, true},
		{MatchStatusPending, MatchStatusAccepted, true},
		{MatchStatusPending, MatchStatusDeclined, true},
		{MatchStatusPending, MatchStatusNoAnswer, false},
		{MatchStatusContacted, MatchStatusAccepted, true},
		{MatchStatusContacted, MatchStatusDeclined, true},
		{MatchStatusContacted, MatchStatusNoAnswer, true},
		{MatchStatusContacted, MatchStatusPending, false},
		{MatchStatusAccepted, MatchStatusDeclined, false},
		{MatchStatusDeclined, MatchStatusContacted, false},
		{MatchStatusNoAnswer, MatchStatusContacted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestMatchStatusTerminal(t *testing.T) {
	assert.False(t, MatchStatusPending.IsTerminal())
	assert.False(t, MatchStatusContacted.IsTerminal())
	assert.True(t, MatchStatusAccepted.IsTerminal())
	assert.True(t, MatchStatusDeclined.IsTerminal())
	assert.True(t, MatchStatusNoAnswer.IsTerminal())
}

func TestMatchStatusesAllowing(t *testing.T) {
	// NO_ANSWER is only reachable after contact.
	assert.ElementsMatch(t, []MatchStatus{MatchStatusContacted}, MatchStatusesAllowing(MatchStatusNoAnswer))
	assert.ElementsMatch(t, []MatchStatus{MatchStatusPending}, MatchStatusesAllowing(MatchStatusContacted))
	assert.ElementsMatch(t,
		[]MatchStatus{MatchStatusPending, MatchStatusContacted},
		MatchStatusesAllowing(MatchStatusAccepted))
	assert.Empty(t, MatchStatusesAllowing(MatchStatusPending))
}

func TestNonTerminalMatchStatuses(t *testing.T) {
	assert.ElementsMatch(t,
		[]MatchStatus{MatchStatusPending, MatchStatusContacted},
		NonTerminalMatchStatuses())
}
