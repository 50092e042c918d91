package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/core/ports"
)

// OrderStatePersister is the state machine interceptor that writes the target
// state of a transition through to the order store before the instance moves.
//
// It is registered first on every instance, so a store failure vetoes the
// transition and leaves both the instance and the stored row unchanged.
type OrderStatePersister struct {
	repo   ports.OrderRepository
	logger *slog.Logger
}

var _ statemachine.Interceptor = (*OrderStatePersister)(nil)

// NewOrderStatePersister binds the interceptor to repo, which should be the
// repository of the unit of work the transition runs in.
func NewOrderStatePersister(repo ports.OrderRepository, logger *slog.Logger) *OrderStatePersister {
	return &OrderStatePersister{
		repo:   repo,
		logger: logger.With("component", "OrderStatePersister"),
	}
}

// PreStateChange loads the order named by the orderId header, sets its state
// to the transition target and saves it.
//
// Without an orderId header nothing is written and the transition proceeds.
// A missing order yields *errs.ObjectNotFoundError; store errors are returned
// as reported by the repository.
func (p *OrderStatePersister) PreStateChange(ctx context.Context, t statemachine.Transition) error {
	if !t.Headers.HasOrderID() {
		p.logger.WarnContext(ctx, "orderId header is missing, state change is not persisted",
			"event", t.Event.String(),
			"from", t.Source.String(),
			"to", t.Target.String())
		return nil
	}

	o, err := p.repo.Get(ctx, t.Headers.OrderID)
	if err != nil {
		return err
	}

	if err = o.ChangeState(t.Target); err != nil {
		return err
	}

	return p.repo.Update(ctx, o)
}
