package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Event requests a transition of an order.
type Event string

const (
	// Pay records a payment for a submitted order.
	Pay Event = "PAY"

	// Fulfill marks a paid order as delivered.
	Fulfill Event = "FULFILL"

	// Cancel cancels a paid or fulfilled order.
	Cancel Event = "CANCEL"
)

// Events returns every recognised event.
func Events() []Event {
	return []Event{Pay, Fulfill, Cancel}
}

// ParseEvent converts a name into an Event, failing on unknown names.
func ParseEvent(name string) (Event, error) {
	e := Event(name)
	if err := e.Validate(); err != nil {
		return "", err
	}
	return e, nil
}

// Validate checks that e is a member of the closed event set.
func (e Event) Validate() error {
	switch e {
	case Pay, Fulfill, Cancel:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%q is not a known order event", string(e)))
	}
}

// String returns the symbolic name of the event.
func (e Event) String() string {
	return string(e)
}
