package statemachine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"orderflow/internal/core/domain/model/order"

	"github.com/looplab/fsm"
)

// Instance is a per-call state machine for one order.
//
// Lifecycle: NewInstance seeds it with the persisted state, Start makes it
// accept events, SendEvent applies one event, Stop retires it. Instances are
// cheap and must not be reused across calls.
//
// SendEvent calls are serialised. Interceptors and listeners run on the
// caller's goroutine and may read State, OrderID and IsRunning, but must not
// call SendEvent, Start or Stop.
type Instance struct {
	definition *Definition
	orderID    order.ID
	machine    *fsm.FSM

	mu           sync.Mutex
	running      atomic.Bool
	started      atomic.Bool
	interceptors []Interceptor
	listeners    []Listener
}

// NewInstance creates a stopped instance for orderID seeded at initial.
// The seed must be a state recognised by the definition.
func NewInstance(definition *Definition, orderID order.ID, initial order.State) (*Instance, error) {
	if definition == nil {
		return nil, errors.New("state machine definition is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("seed state: %w", err)
	}

	inst := &Instance{
		definition: definition,
		orderID:    orderID,
	}

	events := make(fsm.Events, 0, len(definition.rules))
	for _, r := range definition.rules {
		events = append(events, fsm.EventDesc{
			Name: r.Event.String(),
			Src:  []string{r.Source.String()},
			Dst:  r.Target.String(),
		})
	}

	inst.machine = fsm.NewFSM(
		initial.String(),
		events,
		fsm.Callbacks{
			"before_event": inst.beforeEvent,
			"enter_state":  inst.enterState,
		},
	)

	return inst, nil
}

// AddInterceptor registers an interceptor. Interceptors run in registration order.
func (i *Instance) AddInterceptor(interceptor Interceptor) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.interceptors = append(i.interceptors, interceptor)
}

// AddListener registers a listener. Listeners are notified in registration order.
func (i *Instance) AddListener(listener Listener) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.listeners = append(i.listeners, listener)
}

// Start makes the instance accept events. The first Start notifies every
// listener that the seeded state was entered; no interceptor runs.
func (i *Instance) Start(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.running.Store(true)
	if !i.started.CompareAndSwap(false, true) {
		return
	}
	current := i.State()
	for _, l := range i.listeners {
		l.StateEntered(ctx, i.orderID, current)
	}
}

// Stop makes the instance refuse further events. It is idempotent.
func (i *Instance) Stop() {
	i.running.Store(false)
}

// IsRunning reports whether the instance accepts events.
func (i *Instance) IsRunning() bool {
	return i.running.Load()
}

// State returns the current state.
func (i *Instance) State() order.State {
	return order.State(i.machine.Current())
}

// OrderID returns the order this instance was built for.
func (i *Instance) OrderID() order.ID {
	return i.orderID
}

// SendEvent applies event to the instance.
//
// Returns:
//   - Outcome{Rejected} and nil when the definition has no transition for
//     (current state, event); nothing else happens
//   - the first interceptor error, unchanged, when an interceptor vetoes the
//     transition; the current state is untouched and no listener runs
//   - Outcome{Accepted} and nil after the current state moved to the target
//     and every listener was notified
//   - ErrNotRunning when the instance is not started or already stopped
func (i *Instance) SendEvent(ctx context.Context, event order.Event, headers Headers) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running.Load() {
		return Outcome{}, ErrNotRunning
	}

	source := i.State()
	target, ok := i.definition.Resolve(source, event)
	if !ok {
		return rejected(source, event), nil
	}

	if err := i.machine.Event(ctx, event.String(), headers); err != nil {
		var canceled fsm.CanceledError
		if errors.As(err, &canceled) && canceled.Err != nil {
			return Outcome{}, canceled.Err
		}
		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) {
			return rejected(source, event), nil
		}
		return Outcome{}, fmt.Errorf("send %s to order %d: %w", event, i.orderID, err)
	}

	return accepted(source, target, event), nil
}

func (i *Instance) beforeEvent(ctx context.Context, e *fsm.Event) {
	t := Transition{
		Source: order.State(e.Src),
		Target: order.State(e.Dst),
		Event:  order.Event(e.Event),
	}
	if len(e.Args) > 0 {
		if h, ok := e.Args[0].(Headers); ok {
			t.Headers = h
		}
	}

	for _, interceptor := range i.interceptors {
		if err := interceptor.PreStateChange(ctx, t); err != nil {
			e.Cancel(err)
			return
		}
	}
}

func (i *Instance) enterState(ctx context.Context, e *fsm.Event) {
	from, to := order.State(e.Src), order.State(e.Dst)
	for _, l := range i.listeners {
		l.StateChanged(ctx, i.orderID, from, to)
	}
}
