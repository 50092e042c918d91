// Package statemachine drives the order lifecycle.
//
// The package includes:
//   - Definition: the immutable transition table, shared by every instance
//   - Instance: a short-lived machine for one order, built on github.com/looplab/fsm
//   - Interceptor: a hook run before the current state changes; a failure vetoes the transition
//   - Listener: a hook notified after the current state changed
//   - Headers: the metadata envelope sent with an event
//   - Outcome: the accepted or rejected result of one event
//
// An Instance is built per call, seeded with the persisted state, started,
// sent exactly one event, stopped and discarded. It never spawns goroutines
// and holds no reference to storage; persistence is plugged in as an
// interceptor by the application layer.
package statemachine
