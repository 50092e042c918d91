package statemachine

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/order"
)

var (
	// ErrNotRunning is returned by SendEvent before Start or after Stop.
	ErrNotRunning = errors.New("state machine is not running")

	// ErrRejected is the sentinel for events that have no transition from the current state.
	ErrRejected = errors.New("event rejected")
)

// RejectedError reports that Event is not accepted in State.
// It is produced by Outcome.Err for callers that prefer an error value.
type RejectedError struct {
	State order.State
	Event order.Event
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s is not accepted in state %s", ErrRejected, e.Event, e.State)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}
