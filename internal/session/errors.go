package session

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned for forward transitions while a call is in flight.
	ErrBusy = errors.New("an inference call is already in progress")

	// ErrNoAnswers is returned when ending a session with no answers.
	ErrNoAnswers = errors.New("answer at least one question before ending the session")

	// ErrUnknownQuestion is returned for answers to ids not in the quiz.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrAbandoned is returned by a transition whose result arrived after
	// a reset. The result was discarded.
	ErrAbandoned = errors.New("result discarded after reset")

	// ErrEntryNotFound is returned when opening a missing history entry.
	ErrEntryNotFound = errors.New("history entry not found")
)

// ErrInvalidTransition is returned when an operation is not allowed from
// the current step.
type ErrInvalidTransition struct {
	Op   string
	From Step
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.From)
}
