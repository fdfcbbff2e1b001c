package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFullRound(t *testing.T) {
	lim := Limits{Participants: 2, Rounds: 1}
	st := State{Phase: PhaseLobby}

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{TriggerStart, State{PhaseDrawing, 1, 0}},
		{TriggerDrawingsComplete, State{PhaseGuessing, 1, 0}},
		{TriggerCaptionsComplete, State{PhaseVoting, 1, 0}},
		{TriggerBallotsComplete, State{PhaseReveal, 1, 0}},
		{TriggerAdvance, State{PhaseGuessing, 1, 1}},
		{TriggerCaptionsComplete, State{PhaseVoting, 1, 1}},
		{TriggerBallotsComplete, State{PhaseReveal, 1, 1}},
		{TriggerAdvance, State{PhaseScores, 1, 1}},
		{TriggerAdvance, State{PhaseFinished, 1, 1}},
	}

	for _, step := range steps {
		next, err := Next(st, step.trigger, lim)
		require.NoError(t, err, "trigger %s from %s", step.trigger, st.Phase)
		assert.Equal(t, step.want, next)
		st = next
	}
}

func TestNextScoresStartsAnotherRound(t *testing.T) {
	next, err := Next(State{PhaseScores, 1, 2}, TriggerAdvance, Limits{Participants: 3, Rounds: 2})

	require.NoError(t, err)
	assert.Equal(t, State{PhaseDrawing, 2, 0}, next)
}

func TestNextStartNeedsTwoPlayers(t *testing.T) {
	_, err := Next(State{Phase: PhaseLobby}, TriggerStart, Limits{Participants: 1})

	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, KindPrecondition, KindOf(err))
}

func TestNextRejectsOutOfOrderTriggers(t *testing.T) {
	lim := Limits{Participants: 3, Rounds: 1}
	cases := []struct {
		from    Phase
		trigger Trigger
	}{
		{PhaseLobby, TriggerDrawingsComplete},
		{PhaseLobby, TriggerAdvance},
		{PhaseDrawing, TriggerCaptionsComplete},
		{PhaseDrawing, TriggerAdvance},
		{PhaseGuessing, TriggerBallotsComplete},
		{PhaseVoting, TriggerDrawingsComplete},
		{PhaseReveal, TriggerBallotsComplete},
		{PhaseFinished, TriggerAdvance},
		{PhaseFinished, TriggerEnd},
		{PhaseDrawing, TriggerStart},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.trigger), func(t *testing.T) {
			st := State{Phase: tc.from, Round: 1}
			next, err := Next(st, tc.trigger, lim)
			assert.Error(t, err)
			assert.Equal(t, st, next)
		})
	}
}

func TestNextEndFromAnyActivePhase(t *testing.T) {
	for _, p := range []Phase{PhaseLobby, PhaseDrawing, PhaseGuessing, PhaseVoting, PhaseReveal, PhaseScores} {
		next, err := Next(State{Phase: p, Round: 1}, TriggerEnd, Limits{})
		require.NoError(t, err)
		assert.Equal(t, PhaseFinished, next.Phase)
	}
}

func TestQuorum(t *testing.T) {
	assert.False(t, QuorumReached(1, DrawingQuorum(2)))
	assert.True(t, QuorumReached(2, DrawingQuorum(2)))
	assert.True(t, QuorumReached(2, AuthorExcludedQuorum(3)))
	assert.False(t, QuorumReached(0, AuthorExcludedQuorum(1)))
}
