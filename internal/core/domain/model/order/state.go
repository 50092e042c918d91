package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// State is the lifecycle state of an order.
//
// States are persisted by their symbolic name rather than an ordinal, so new
// states can be added without rewriting stored rows:
//
//	SUBMITTED ──PAY──> PAID ──FULFILL──> FULFILLED
//	                    │                     │
//	                  CANCEL                CANCEL
//	                    │                     │
//	                    └────> CANCELLED <────┘
type State string

const (
	// Submitted is the initial state of every new order.
	Submitted State = "SUBMITTED"

	// Paid indicates a payment confirmation was recorded.
	Paid State = "PAID"

	// Fulfilled indicates the order was delivered. It still accepts CANCEL.
	Fulfilled State = "FULFILLED"

	// Cancelled is absorbing: no event is accepted once it is reached.
	Cancelled State = "CANCELLED"
)

// States returns every recognised state in lifecycle order.
func States() []State {
	return []State{Submitted, Paid, Fulfilled, Cancelled}
}

// ParseState converts a stored or transmitted name into a State.
//
// Returns:
//   - the matching State for "SUBMITTED", "PAID", "FULFILLED" or "CANCELLED"
//   - *errs.ValueIsInvalidError for anything else, including the empty string
//
// Matching is exact: "paid" is rejected. Readers of persisted orders must
// surface this error rather than substitute a default.
func ParseState(name string) (State, error) {
	s := State(name)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks that s is a member of the closed state set.
func (s State) Validate() error {
	switch s {
	case Submitted, Paid, Fulfilled, Cancelled:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a known order state", string(s)))
	}
}

// String returns the symbolic name of the state.
func (s State) String() string {
	return string(s)
}
