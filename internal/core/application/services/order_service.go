// Package services exposes the order lifecycle as one application service:
// create an order, then drive it with PAY, FULFILL and CANCEL.
package services

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// OrderService is the entry point used by the HTTP adapter, the CLI and the jobs.
//
// Every state-changing operation builds a fresh state machine instance from
// the stored order, so calls for different orders run in parallel safely and
// calls for the same order are serialised by the store.
//
// Example:
//
//	svc := services.NewOrderService(uowFactory, publisher, logger,
//	    statemachine.NewLoggingListener(logger))
//
//	o, err := svc.Create(ctx, time.Now())
//	if err != nil {
//	    return err
//	}
//	outcome, err := svc.Pay(ctx, o.ID(), kernel.NewUUID().String())
//	if err != nil {
//	    return err
//	}
//	if outcome.Rejected() {
//	    return outcome.Err()
//	}
type OrderService struct {
	create commands.CreateOrderCommandHandler
	change commands.ChangeOrderStateCommandHandler
	get    queries.GetOrderQueryHandler
	counts queries.GetOrderStateCountsQueryHandler
}

// NewOrderService wires the command and query handlers over one store.
// publisher may be nil; listeners are notified after every accepted transition.
func NewOrderService(
	uowFactory ports.UnitOfWorkFactory,
	publisher ports.OrderEventPublisher,
	logger *slog.Logger,
	listeners ...statemachine.Listener,
) *OrderService {
	orderUoWFactory := commands.OrderUoWFactoryFunc(func() commands.OrderUoW {
		return uowFactory.Create()
	})
	reader := uowFactory.Create().OrderRepository()

	return &OrderService{
		create: commands.NewCreateOrderCommandHandler(orderUoWFactory),
		change: commands.NewChangeOrderStateCommandHandler(orderUoWFactory, publisher, logger, listeners...),
		get:    queries.NewGetOrderQueryHandler(reader),
		counts: queries.NewGetOrderStateCountsQueryHandler(reader),
	}
}

// Create persists a new order in SUBMITTED and returns it with its id.
func (s *OrderService) Create(ctx context.Context, when time.Time) (*order.Order, error) {
	cmd, err := commands.NewCreateOrderCommand(when)
	if err != nil {
		return nil, err
	}
	return s.create.Handle(ctx, cmd)
}

// Pay sends PAY with the payment confirmation number as a header.
func (s *OrderService) Pay(ctx context.Context, id order.ID, paymentConfirmationNumber string) (statemachine.Outcome, error) {
	if paymentConfirmationNumber == "" {
		return statemachine.Outcome{}, errs.NewValueIsRequiredError(statemachine.HeaderPaymentConfirmationNumber)
	}
	return s.apply(ctx, id, order.Pay, statemachine.Headers{PaymentConfirmationNumber: paymentConfirmationNumber})
}

// Fulfill sends FULFILL.
func (s *OrderService) Fulfill(ctx context.Context, id order.ID) (statemachine.Outcome, error) {
	return s.apply(ctx, id, order.Fulfill, statemachine.Headers{})
}

// Cancel sends CANCEL.
func (s *OrderService) Cancel(ctx context.Context, id order.ID) (statemachine.Outcome, error) {
	return s.apply(ctx, id, order.Cancel, statemachine.Headers{})
}

// Change sends an arbitrary event. extra is forwarded as headers; a
// paymentConfirmationNumber key in it is honoured, an orderId key is
// replaced by id.
func (s *OrderService) Change(
	ctx context.Context,
	id order.ID,
	event order.Event,
	extra map[string]string,
) (statemachine.Outcome, error) {
	headers, err := statemachine.HeadersFromMap(withoutOrderID(extra))
	if err != nil {
		return statemachine.Outcome{}, err
	}
	return s.apply(ctx, id, event, headers)
}

// Get returns the stored order.
func (s *OrderService) Get(ctx context.Context, id order.ID) (queries.GetOrderQueryResponse, error) {
	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return queries.GetOrderQueryResponse{}, err
	}
	return s.get.Handle(ctx, query)
}

// StateCounts returns how many orders sit in each state.
func (s *OrderService) StateCounts(ctx context.Context) (queries.GetOrderStateCountsQueryResponse, error) {
	return s.counts.Handle(ctx, queries.NewGetOrderStateCountsQuery())
}

func (s *OrderService) apply(
	ctx context.Context,
	id order.ID,
	event order.Event,
	headers statemachine.Headers,
) (statemachine.Outcome, error) {
	cmd, err := commands.NewChangeOrderStateCommand(id, event, headers)
	if err != nil {
		return statemachine.Outcome{}, err
	}
	return s.change.Handle(ctx, cmd)
}

func withoutOrderID(extra map[string]string) map[string]string {
	if _, ok := extra[statemachine.HeaderOrderID]; !ok {
		return extra
	}
	out := make(map[string]string, len(extra)-1)
	for k, v := range extra {
		if k != statemachine.HeaderOrderID {
			out[k] = v
		}
	}
	return out
}
