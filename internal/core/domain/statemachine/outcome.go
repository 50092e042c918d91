package statemachine

import "orderflow/internal/core/domain/model/order"

// Result tells whether an event caused a transition.
type Result string

const (
	Accepted Result = "ACCEPTED"
	Rejected Result = "REJECTED"
)

// Outcome is the result of sending one event to an instance.
//
// For an accepted event Source is the state before and Target the state
// after the transition. For a rejected event Source and Target are both the
// unchanged current state.
type Outcome struct {
	Result Result
	Source order.State
	Target order.State
	Event  order.Event
}

func accepted(source, target order.State, event order.Event) Outcome {
	return Outcome{Result: Accepted, Source: source, Target: target, Event: event}
}

func rejected(current order.State, event order.Event) Outcome {
	return Outcome{Result: Rejected, Source: current, Target: current, Event: event}
}

// Accepted reports whether the event caused a transition.
func (o Outcome) Accepted() bool {
	return o.Result == Accepted
}

// Rejected reports whether the event was refused in the current state.
func (o Outcome) Rejected() bool {
	return o.Result == Rejected
}

// State returns the state after the event was processed.
func (o Outcome) State() order.State {
	return o.Target
}

// Err returns a *RejectedError for a rejected outcome and nil otherwise.
func (o Outcome) Err() error {
	if o.Rejected() {
		return &RejectedError{State: o.Source, Event: o.Event}
	}
	return nil
}
