package statemachine

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
)

// Transition describes a pending state change handed to interceptors.
type Transition struct {
	Source  order.State
	Target  order.State
	Event   order.Event
	Headers Headers
}

// Interceptor runs before the current state of an instance changes.
//
// A non-nil error aborts the transition: the instance keeps its state, later
// interceptors and all listeners are skipped, and SendEvent returns the
// error unchanged.
type Interceptor interface {
	PreStateChange(ctx context.Context, t Transition) error
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc func(ctx context.Context, t Transition) error

func (f InterceptorFunc) PreStateChange(ctx context.Context, t Transition) error {
	return f(ctx, t)
}

// Listener is notified of state changes after they happened.
// Listeners cannot veto anything.
type Listener interface {
	// StateEntered is called once when the instance is first started, with the seeded state.
	StateEntered(ctx context.Context, orderID order.ID, state order.State)

	// StateChanged is called after each accepted transition.
	StateChanged(ctx context.Context, orderID order.ID, from, to order.State)
}

// NopListener implements Listener with no-op methods. Embed it to override
// only one of them.
type NopListener struct{}

func (NopListener) StateEntered(context.Context, order.ID, order.State) {}

func (NopListener) StateChanged(context.Context, order.ID, order.State, order.State) {}

// StateChangedFunc adapts a function to a Listener that only observes changes.
type StateChangedFunc func(ctx context.Context, orderID order.ID, from, to order.State)

func (f StateChangedFunc) StateEntered(context.Context, order.ID, order.State) {}

func (f StateChangedFunc) StateChanged(ctx context.Context, orderID order.ID, from, to order.State) {
	f(ctx, orderID, from, to)
}

type loggingListener struct {
	NopListener
	logger *slog.Logger
}

// NewLoggingListener returns a listener that logs every state change at info level.
func NewLoggingListener(logger *slog.Logger) Listener {
	return &loggingListener{logger: logger.With("component", "OrderStateMachine")}
}

func (l *loggingListener) StateChanged(ctx context.Context, orderID order.ID, from, to order.State) {
	l.logger.InfoContext(ctx, "state changed",
		"order_id", int64(orderID),
		"from", from.String(),
		"to", to.String())
}
