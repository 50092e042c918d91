package statemachine

import (
	"errors"
	"fmt"
	"slices"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// TransitionRule is one row of the transition table.
type TransitionRule struct {
	Source order.State
	Event  order.Event
	Target order.State
}

type ruleKey struct {
	source order.State
	event  order.Event
}

// Definition is the immutable description of the order lifecycle: its
// states, events, initial state, terminal states and transition table.
//
// A Definition is built once and shared by reference between all instances.
// It holds no mutable state and is safe for concurrent use.
type Definition struct {
	initial  order.State
	terminal []order.State
	rules    []TransitionRule
	targets  map[ruleKey]order.State
}

var orderDefinition = mustDefinition(NewDefinition(
	order.Submitted,
	[]order.State{order.Fulfilled, order.Cancelled},
	[]TransitionRule{
		{Source: order.Submitted, Event: order.Pay, Target: order.Paid},
		{Source: order.Paid, Event: order.Fulfill, Target: order.Fulfilled},
		{Source: order.Paid, Event: order.Cancel, Target: order.Cancelled},
		{Source: order.Fulfilled, Event: order.Cancel, Target: order.Cancelled},
	},
))

// OrderDefinition returns the order lifecycle definition:
//
//	SUBMITTED -PAY->     PAID
//	PAID      -FULFILL-> FULFILLED
//	PAID      -CANCEL->  CANCELLED
//	FULFILLED -CANCEL->  CANCELLED
//
// Every other (state, event) pair is rejected. FULFILLED and CANCELLED are
// terminal; only CANCELLED is absorbing.
func OrderDefinition() *Definition {
	return orderDefinition
}

// NewDefinition validates and builds a Definition.
//
// Parameters:
//   - initial: the state new orders start in
//   - terminal: states considered final for reporting purposes
//   - rules: the transition table
//
// Returns:
//   - *Definition: the immutable definition
//   - error: every validation failure joined together; unknown states or
//     events and duplicate (source, event) pairs are rejected
func NewDefinition(initial order.State, terminal []order.State, rules []TransitionRule) (*Definition, error) {
	var problems []error

	if err := initial.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("initial state: %w", err))
	}
	for _, s := range terminal {
		if err := s.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("terminal state: %w", err))
		}
	}

	targets := make(map[ruleKey]order.State, len(rules))
	for _, r := range rules {
		if err := errors.Join(r.Source.Validate(), r.Event.Validate(), r.Target.Validate()); err != nil {
			problems = append(problems, fmt.Errorf("rule %s -%s-> %s: %w", r.Source, r.Event, r.Target, err))
			continue
		}
		key := ruleKey{source: r.Source, event: r.Event}
		if _, ok := targets[key]; ok {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause("rules",
				fmt.Errorf("duplicate transition for %s on %s", r.Source, r.Event)))
			continue
		}
		targets[key] = r.Target
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	return &Definition{
		initial:  initial,
		terminal: slices.Clone(terminal),
		rules:    slices.Clone(rules),
		targets:  targets,
	}, nil
}

func mustDefinition(d *Definition, err error) *Definition {
	if err != nil {
		panic(err)
	}
	return d
}

// InitialState returns the state new orders start in.
func (d *Definition) InitialState() order.State {
	return d.initial
}

// IsTerminal reports whether s is one of the final states of the lifecycle.
// A terminal state may still accept events; see IsAbsorbing.
func (d *Definition) IsTerminal(s order.State) bool {
	return slices.Contains(d.terminal, s)
}

// IsAbsorbing reports whether no transition leaves s.
func (d *Definition) IsAbsorbing(s order.State) bool {
	return len(d.AvailableEvents(s)) == 0
}

// Resolve returns the target of event e in state s and true, or the zero
// State and false when the pair is not in the table.
func (d *Definition) Resolve(s order.State, e order.Event) (order.State, bool) {
	target, ok := d.targets[ruleKey{source: s, event: e}]
	return target, ok
}

// States returns the recognised states.
func (d *Definition) States() []order.State {
	return order.States()
}

// Events returns the recognised events.
func (d *Definition) Events() []order.Event {
	return order.Events()
}

// Transitions returns a copy of the transition table in declaration order.
func (d *Definition) Transitions() []TransitionRule {
	return slices.Clone(d.rules)
}

// AvailableEvents returns the events accepted in s, in declaration order.
func (d *Definition) AvailableEvents(s order.State) []order.Event {
	var events []order.Event
	for _, r := range d.rules {
		if r.Source == s {
			events = append(events, r.Event)
		}
	}
	return events
}
