package game

// Phase is the lifecycle status of a session.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseDrawing  Phase = "drawing"
	PhaseGuessing Phase = "guessing"
	PhaseVoting   Phase = "voting"
	PhaseReveal   Phase = "reveal"
	PhaseScores   Phase = "scores"
	PhaseFinished Phase = "finished"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseLobby, PhaseDrawing, PhaseGuessing, PhaseVoting, PhaseReveal, PhaseScores, PhaseFinished:
		return true
	}
	return false
}

// Active reports whether a session in phase p still counts towards join code uniqueness.
func (p Phase) Active() bool {
	return p != PhaseFinished
}

// InRound reports whether p is one of the phases that present a submission.
func (p Phase) InRound() bool {
	switch p {
	case PhaseGuessing, PhaseVoting, PhaseReveal, PhaseScores:
		return true
	}
	return false
}

// AcceptsBallots reports whether votes may be stored while the session is in p.
func (p Phase) AcceptsBallots() bool {
	return p.InRound()
}

// ShowsResults reports whether the reveal view may be served in p.
func (p Phase) ShowsResults() bool {
	return p == PhaseReveal || p == PhaseScores
}

func (p Phase) String() string { return string(p) }
