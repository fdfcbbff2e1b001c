package game

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller.
type Kind uint8

const (
	KindUpstream Kind = iota
	KindNotFound
	KindConflict
	KindPrecondition
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	case KindForbidden:
		return "forbidden"
	}
	return "upstream"
}

// Error carries a user-facing message and the kind used to pick a response status.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two errors of the same kind and message, so wrapped copies of a sentinel still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

var (
	ErrSessionNotFound     = &Error{Kind: KindNotFound, Message: "game not found"}
	ErrParticipantNotFound = &Error{Kind: KindNotFound, Message: "player not found"}
	ErrSubmissionNotFound  = &Error{Kind: KindNotFound, Message: "drawing not found"}
	ErrCaptionNotFound     = &Error{Kind: KindNotFound, Message: "caption not found"}

	ErrNotInSession  = &Error{Kind: KindConflict, Message: "player is not part of this game"}
	ErrDuplicateVote = &Error{Kind: KindConflict, Message: "you already voted"}
	ErrOwnSubmission = &Error{Kind: KindConflict, Message: "you cannot guess or vote on your own drawing"}
	ErrStaleTarget   = &Error{Kind: KindConflict, Message: "this drawing is no longer being played"}
	ErrCodeExhausted = &Error{Kind: KindConflict, Message: "no free game code, try again"}

	ErrNotEnoughPlayers  = &Error{Kind: KindPrecondition, Message: "at least 2 players are needed to start"}
	ErrInvalidPhase      = &Error{Kind: KindPrecondition, Message: "action not allowed in the current phase"}
	ErrAlreadyStarted    = &Error{Kind: KindPrecondition, Message: "game has already started"}
	ErrInvalidTransition = &Error{Kind: KindPrecondition, Message: "invalid phase transition"}
	ErrMissingField      = &Error{Kind: KindPrecondition, Message: "missing required fields"}

	ErrNotHost = &Error{Kind: KindForbidden, Message: "only the host can do that"}
)

// Precondition returns a precondition failure with a custom message.
func Precondition(msg string) error {
	return &Error{Kind: KindPrecondition, Message: msg}
}

// Upstream wraps a storage or transport failure.
func Upstream(err error, msg string) error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// KindOf returns the kind of err, treating unclassified errors as upstream failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
