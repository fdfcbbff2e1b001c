// Package broadcast fans session events out to subscribers. Delivery is best effort: subscribers treat an
// event as a hint to re-fetch state, never as the state itself.
package broadcast

import (
	"context"
	"encoding/json"
)

// Event names published on a session topic.
const (
	EventPlayerJoined     = "player-joined"
	EventPhaseChanged     = "phase-changed"
	EventDrawingSubmitted = "drawing-submitted"
	EventGuessSubmitted   = "guess-submitted"
	EventVoteSubmitted    = "vote-submitted"
)

// Event is one message for the topic of a session code.
type Event struct {
	Code      string
	SessionID string
	Name      string
	Payload   any
}

// Publisher sends an event to every subscriber of its code.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Frame is the wire form of an event.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Encode marshals ev into a frame.
func Encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: ev.Name, Payload: payload})
}

// Channel returns the topic name for a join code.
func Channel(code string) string {
	return "game-" + code
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
