package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "orderflow/commands"

// ChangeOrderStateCommandHandler applies one event to one order.
//
// Every call reconstitutes a fresh state machine instance from the stored
// order, registers the OrderStatePersister ahead of the configured
// listeners, sends the event and commits only when it was accepted.
// Committed changes are then handed to the publisher.
//
// Example:
//
//	handler := NewChangeOrderStateCommandHandler(uowFactory, publisher, logger,
//	    statemachine.NewLoggingListener(logger))
//	cmd, _ := NewChangeOrderStateCommand(id, order.Fulfill, statemachine.Headers{})
//
//	outcome, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrObjectNotFound):
//	    log.Println("no such order")
//	case err != nil:
//	    log.Printf("state change failed: %v", err)
//	case outcome.Rejected():
//	    log.Printf("%s is not allowed in %s", outcome.Event, outcome.Source)
//	default:
//	    log.Printf("order is now %s", outcome.State())
//	}
type ChangeOrderStateCommandHandler struct {
	uowFactory OrderUoWFactory
	definition *statemachine.Definition
	listeners  []statemachine.Listener
	publisher  ports.OrderEventPublisher
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewChangeOrderStateCommandHandler creates the handler. publisher may be nil,
// in which case committed changes are not published.
func NewChangeOrderStateCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.OrderEventPublisher,
	logger *slog.Logger,
	listeners ...statemachine.Listener,
) ChangeOrderStateCommandHandler {
	return ChangeOrderStateCommandHandler{
		uowFactory: uowFactory,
		definition: statemachine.OrderDefinition(),
		listeners:  listeners,
		publisher:  publisher,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
}

// Handle applies the event in cmd to the stored order.
//
// Returns:
//   - an accepted Outcome once the new state is committed
//   - a rejected Outcome and nil error when the event is illegal in the
//     stored state; nothing is written
//   - *errs.ObjectNotFoundError when the order does not exist
//   - *errs.StoreFailureError when loading, saving or committing fails; the
//     stored state is unchanged
func (h ChangeOrderStateCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeOrderStateCommand,
) (statemachine.Outcome, error) {
	if err := cmd.Validate(); err != nil {
		return statemachine.Outcome{}, err
	}

	ctx, span := h.tracer.Start(ctx, "ChangeOrderState", trace.WithAttributes(
		attribute.Int64("order.id", int64(cmd.OrderID())),
		attribute.String("order.event", cmd.Event().String()),
	))
	defer span.End()

	outcome, err := h.applyEvent(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return statemachine.Outcome{}, err
	}
	span.SetAttributes(
		attribute.String("order.outcome", string(outcome.Result)),
		attribute.String("order.state", outcome.State().String()),
	)

	if outcome.Accepted() {
		h.publish(ctx, cmd, outcome)
	}

	return outcome, nil
}

func (h ChangeOrderStateCommandHandler) applyEvent(
	ctx context.Context,
	cmd ChangeOrderStateCommand,
) (statemachine.Outcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return statemachine.Outcome{}, storeFailure("begin transaction", err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	current, err := repo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return statemachine.Outcome{}, err
	}

	inst, err := statemachine.NewInstance(h.definition, current.ID(), current.State())
	if err != nil {
		return statemachine.Outcome{}, err
	}
	inst.AddInterceptor(NewOrderStatePersister(repo, h.logger))
	for _, l := range h.listeners {
		inst.AddListener(l)
	}

	inst.Start(ctx)
	defer inst.Stop()

	outcome, err := inst.SendEvent(ctx, cmd.Event(), cmd.Headers())
	if err != nil {
		return statemachine.Outcome{}, err
	}
	if outcome.Rejected() {
		return outcome, nil
	}

	if err = uow.Commit(ctx); err != nil {
		return statemachine.Outcome{}, storeFailure("commit transaction", err)
	}

	return outcome, nil
}

func (h ChangeOrderStateCommandHandler) publish(
	ctx context.Context,
	cmd ChangeOrderStateCommand,
	outcome statemachine.Outcome,
) {
	if h.publisher == nil {
		return
	}

	event := order.StateChanged{
		OrderID:    cmd.OrderID(),
		Event:      outcome.Event,
		From:       outcome.Source,
		To:         outcome.Target,
		OccurredAt: h.now().UTC(),
	}
	if err := h.publisher.PublishStateChanged(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish order state change",
			"order_id", int64(event.OrderID),
			"from", event.From.String(),
			"to", event.To.String(),
			"error", err)
	}
}
