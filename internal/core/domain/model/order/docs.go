// Package order provides the Order aggregate and the closed sets of states and
// events that drive its lifecycle.
//
// The package includes:
//   - Order: the aggregate root holding identity, creation time and current state
//   - State: SUBMITTED, PAID, FULFILLED, CANCELLED, persisted by symbolic name
//   - Event: PAY, FULFILL, CANCEL
//   - StateChanged: the record published after a transition is committed
//
// Key business rules:
//   - An order always holds a recognised State; unknown names read from storage
//     fail loudly instead of defaulting
//   - New orders start in SUBMITTED
//   - Which state follows which event is decided by the state machine
//     definition, not by this package
package order
