package game

// Trigger is an event that may move a session to another phase.
type Trigger string

const (
	TriggerStart            Trigger = "start"
	TriggerDrawingsComplete Trigger = "drawings-complete"
	TriggerCaptionsComplete Trigger = "captions-complete"
	TriggerBallotsComplete  Trigger = "ballots-complete"
	TriggerAdvance          Trigger = "advance"
	TriggerEnd              Trigger = "end"
)

// State is the phase/round/index triple owned by a session.
type State struct {
	Phase Phase
	Round int
	Index int
}

// Limits are the session facts the transition guards read.
type Limits struct {
	Participants int
	Rounds       int
}

// MinParticipants is the smallest lobby that can be started.
const MinParticipants = 2

// Next applies trigger to st and returns the resulting state. It is the only place that knows the
// transition table; callers persist the result with a compare-and-swap on st.
func Next(st State, trigger Trigger, lim Limits) (State, error) {
	if st.Phase == PhaseFinished {
		return st, ErrInvalidTransition
	}

	switch trigger {
	case TriggerEnd:
		return State{Phase: PhaseFinished, Round: st.Round, Index: st.Index}, nil

	case TriggerStart:
		if st.Phase != PhaseLobby {
			return st, ErrAlreadyStarted
		}
		if lim.Participants < MinParticipants {
			return st, ErrNotEnoughPlayers
		}
		return State{Phase: PhaseDrawing, Round: 1, Index: 0}, nil

	case TriggerDrawingsComplete:
		if st.Phase != PhaseDrawing {
			return st, ErrInvalidTransition
		}
		return State{Phase: PhaseGuessing, Round: st.Round, Index: 0}, nil

	case TriggerCaptionsComplete:
		if st.Phase != PhaseGuessing {
			return st, ErrInvalidTransition
		}
		return State{Phase: PhaseVoting, Round: st.Round, Index: st.Index}, nil

	case TriggerBallotsComplete:
		if st.Phase != PhaseVoting {
			return st, ErrInvalidTransition
		}
		return State{Phase: PhaseReveal, Round: st.Round, Index: st.Index}, nil

	case TriggerAdvance:
		return advance(st, lim)
	}

	return st, ErrInvalidTransition
}

func advance(st State, lim Limits) (State, error) {
	switch st.Phase {
	case PhaseGuessing, PhaseVoting, PhaseReveal:
		if next := st.Index + 1; next < lim.Participants {
			return State{Phase: PhaseGuessing, Round: st.Round, Index: next}, nil
		}
		return State{Phase: PhaseScores, Round: st.Round, Index: st.Index}, nil
	case PhaseScores:
		rounds := lim.Rounds
		if rounds < 1 {
			rounds = 1
		}
		if st.Round < rounds {
			return State{Phase: PhaseDrawing, Round: st.Round + 1, Index: 0}, nil
		}
		return State{Phase: PhaseFinished, Round: st.Round, Index: st.Index}, nil
	}
	return st, ErrInvalidTransition
}
